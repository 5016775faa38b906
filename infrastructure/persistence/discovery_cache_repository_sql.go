package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"viral-clips/domain/model"
	"viral-clips/domain/repository"
	"viral-clips/infrastructure/logger"
)

// EnsureDiscoveryCacheSchema creates the cold-tier table if not exists.
func EnsureDiscoveryCacheSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS discovery_cache (
        fingerprint TEXT PRIMARY KEY,
        etag TEXT,
        payload JSONB NOT NULL,
        stored_at TIMESTAMPTZ NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create discovery_cache table: %w", err)
	}

	// Helpful index to purge or check expiry
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_discovery_cache_expires_at ON discovery_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_discovery_cache_expires_at")
	}
	return nil
}

// SQLDiscoveryCacheRepository is the Postgres cold-tier variant. Payloads
// are stored as JSONB for flexibility without strict relational mapping.
type SQLDiscoveryCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLDiscoveryCacheRepository(db *sql.DB) *SQLDiscoveryCacheRepository {
	return &SQLDiscoveryCacheRepository{db: db, now: time.Now}
}

func (r *SQLDiscoveryCacheRepository) Get(ctx context.Context, fingerprint string) (*model.CacheEntry, error) {
	q := `SELECT fingerprint, etag, payload, stored_at, expires_at FROM discovery_cache
          WHERE fingerprint=$1 AND expires_at > $2`
	return r.scanOne(r.db.QueryRowContext(ctx, q, fingerprint, r.now().UTC()))
}

func (r *SQLDiscoveryCacheRepository) GetStale(ctx context.Context, fingerprint string) (*model.CacheEntry, error) {
	q := `SELECT fingerprint, etag, payload, stored_at, expires_at FROM discovery_cache WHERE fingerprint=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, fingerprint))
}

func (r *SQLDiscoveryCacheRepository) scanOne(row *sql.Row) (*model.CacheEntry, error) {
	var entry model.CacheEntry
	var etag sql.NullString
	var raw []byte
	if err := row.Scan(&entry.Fingerprint, &etag, &raw, &entry.StoredAt, &entry.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	entry.ETag = etag.String
	if err := json.Unmarshal(raw, &entry.Payload); err != nil {
		return nil, fmt.Errorf("decode cached payload: %w", err)
	}
	return &entry, nil
}

func (r *SQLDiscoveryCacheRepository) Upsert(ctx context.Context, entry *model.CacheEntry) error {
	raw, err := json.Marshal(&entry.Payload)
	if err != nil {
		return err
	}
	q := `INSERT INTO discovery_cache(fingerprint, etag, payload, stored_at, expires_at)
          VALUES ($1,$2,$3,$4,$5)
          ON CONFLICT (fingerprint) DO UPDATE SET etag=EXCLUDED.etag, payload=EXCLUDED.payload, stored_at=EXCLUDED.stored_at, expires_at=EXCLUDED.expires_at`
	_, err = r.db.ExecContext(ctx, q, entry.Fingerprint, nullable(entry.ETag), raw, entry.StoredAt.UTC(), entry.ExpiresAt.UTC())
	return err
}

func (r *SQLDiscoveryCacheRepository) Touch(ctx context.Context, fingerprint string, storedAt, expiresAt time.Time) error {
	q := `UPDATE discovery_cache SET stored_at=$2, expires_at=$3 WHERE fingerprint=$1`
	_, err := r.db.ExecContext(ctx, q, fingerprint, storedAt.UTC(), expiresAt.UTC())
	return err
}

func (r *SQLDiscoveryCacheRepository) Delete(ctx context.Context, fingerprint string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discovery_cache WHERE fingerprint=$1`, fingerprint)
	return err
}

func (r *SQLDiscoveryCacheRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discovery_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLDiscoveryCacheRepository) Count(ctx context.Context) (int64, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM discovery_cache WHERE expires_at > $1`, r.now().UTC())
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SQLDiscoveryCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discovery_cache WHERE expires_at < $1`, r.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ repository.IDiscoveryCache = (*SQLDiscoveryCacheRepository)(nil)
