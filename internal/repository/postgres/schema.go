// internal/repository/postgres/schema.go
package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS auth_identities (
		id          BIGSERIAL PRIMARY KEY,
		phone       VARCHAR(16) NOT NULL UNIQUE,
		email       VARCHAR(255),
		role        VARCHAR(16) NOT NULL,
		status      VARCHAR(16) NOT NULL DEFAULT 'active',
		last_login  TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_auth_identities_email
		ON auth_identities (LOWER(email)) WHERE email IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS auth_credentials (
		id                  BIGSERIAL PRIMARY KEY,
		identity_id         BIGINT NOT NULL UNIQUE REFERENCES auth_identities(id) ON DELETE CASCADE,
		password_hash       TEXT NOT NULL,
		password_changed_at TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id                 BIGSERIAL PRIMARY KEY,
		identity_id        BIGINT NOT NULL UNIQUE REFERENCES auth_identities(id) ON DELETE CASCADE,
		full_name          VARCHAR(255) NOT NULL,
		address            TEXT,
		cnic               VARCHAR(15),
		service_categories TEXT[] NOT NULL DEFAULT '{}',
		settings           JSONB NOT NULL DEFAULT '{}',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS auth_sessions (
		id               BIGSERIAL PRIMARY KEY,
		identity_id      BIGINT NOT NULL REFERENCES auth_identities(id) ON DELETE CASCADE,
		session_token    VARCHAR(64) NOT NULL UNIQUE,
		refresh_token    VARCHAR(64),
		ip_address       VARCHAR(64),
		user_agent       TEXT,
		device_id        VARCHAR(128),
		status           VARCHAR(16) NOT NULL DEFAULT 'active',
		login_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at       TIMESTAMPTZ NOT NULL,
		logout_at        TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_sessions_identity
		ON auth_sessions (identity_id) WHERE status = 'active'`,
}

// EnsureSchema creates the auth tables if they are missing.
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
