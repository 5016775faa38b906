package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"viral-clips/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	YouTube     YouTube     `json:"youtube"`
	Cache       Cache       `json:"cache"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	DailyQuota   int64  `json:"dailyQuota"`
}

// Cache holds the two-tier TTL and sizing knobs. The detail batch size is
// fixed at 50 by the upstream protocol and deliberately has no knob here.
type Cache struct {
	HotTTLMinutes int    `json:"hotTTLMinutes"`
	HotMaxEntries int    `json:"hotMaxEntries"`
	ColdTTLHours  int    `json:"coldTTLHours"`
	ColdBackend   string `json:"coldBackend"` // mongo (default) or postgres
	SweepMinutes  int    `json:"sweepMinutes"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initCache(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = os.Getenv("MONGO_HOST")
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = os.Getenv("MONGO_PORT")
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = getEnv("MONGO_DB_NAME", "viral_clips")
	}

	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = getEnv("DB_PORT", "5432")
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
}

func initCache(C *Config) {
	if C.Cache.HotTTLMinutes <= 0 {
		C.Cache.HotTTLMinutes = 30
	}
	if C.Cache.HotMaxEntries <= 0 {
		C.Cache.HotMaxEntries = 512
	}
	if C.Cache.ColdTTLHours <= 0 {
		C.Cache.ColdTTLHours = 6
	}
	if C.Cache.SweepMinutes <= 0 {
		C.Cache.SweepMinutes = 10
	}
	if C.Cache.ColdBackend == "" {
		C.Cache.ColdBackend = getEnv("COLD_CACHE_BACKEND", "mongo")
	}
	if C.YouTube.DailyQuota <= 0 {
		if v := os.Getenv("YOUTUBE_DAILY_QUOTA"); v != "" {
			if q, err := strconv.ParseInt(v, 10, 64); err == nil {
				C.YouTube.DailyQuota = q
			}
		}
	}
	if C.YouTube.DailyQuota <= 0 {
		C.YouTube.DailyQuota = 10000
	}
}

// HotTTL returns the configured hot-tier TTL.
func (c *Cache) HotTTL() time.Duration { return time.Duration(c.HotTTLMinutes) * time.Minute }

// ColdTTL returns the configured cold-tier TTL.
func (c *Cache) ColdTTL() time.Duration { return time.Duration(c.ColdTTLHours) * time.Hour }

// SweepInterval returns the memory-hygiene sweep period.
func (c *Cache) SweepInterval() time.Duration { return time.Duration(c.SweepMinutes) * time.Minute }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
