package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "config.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment line\n"+
			"\n"+
			"PLAIN_VALUE=hello\n"+
			"QUOTED_VALUE=\"quoted\"\n"+
			"ALREADY_SET=from-file\n"+
			"not a pair\n"+
			"=no-key\n",
	), 0o644))

	t.Setenv("ALREADY_SET", "from-env")
	t.Setenv("PLAIN_VALUE", "")
	os.Unsetenv("PLAIN_VALUE")
	t.Setenv("QUOTED_VALUE", "")
	os.Unsetenv("QUOTED_VALUE")

	LoadEnvFromFile(envFile, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "hello", os.Getenv("PLAIN_VALUE"))
	assert.Equal(t, "quoted", os.Getenv("QUOTED_VALUE"))
	// Existing environment wins over file contents.
	assert.Equal(t, "from-env", os.Getenv("ALREADY_SET"))
}
