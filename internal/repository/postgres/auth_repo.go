// internal/repository/postgres/auth_repository.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ustaad-service/internal/domain/auth"
	xerrors "ustaad-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type AuthRepository struct {
	db *DB
}

func NewAuthRepository(db *DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// ========== Identity Methods ==========

const identityColumns = `id, phone, email, role, status, last_login, created_at, updated_at`

func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var identity auth.Identity
	err := row.Scan(
		&identity.ID, &identity.Phone, &identity.Email, &identity.Role,
		&identity.Status, &identity.LastLogin, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	return &identity, nil
}

// FindIdentityByPhone expects the canonical +923XXXXXXXXX form.
func (r *AuthRepository) FindIdentityByPhone(ctx context.Context, phone string) (*auth.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM auth_identities WHERE phone = $1`
	return scanIdentity(r.db.pool.QueryRow(ctx, query, phone))
}

func (r *AuthRepository) FindIdentityByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM auth_identities WHERE LOWER(email) = LOWER($1)`
	return scanIdentity(r.db.pool.QueryRow(ctx, query, email))
}

func (r *AuthRepository) FindIdentityByID(ctx context.Context, id int64) (*auth.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM auth_identities WHERE id = $1`
	return scanIdentity(r.db.pool.QueryRow(ctx, query, id))
}

// UpdateIdentityLastLogin updates the last login timestamp
func (r *AuthRepository) UpdateIdentityLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE auth_identities SET last_login = $1 WHERE id = $2`
	_, err := r.db.pool.Exec(ctx, query, time.Now(), id)
	return err
}

// UpdateIdentityEmail sets or clears the email. A taken address yields
// xerrors.ErrDuplicateEntry.
func (r *AuthRepository) UpdateIdentityEmail(ctx context.Context, id int64, email *string) error {
	query := `UPDATE auth_identities SET email = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.pool.Exec(ctx, query, email, time.Now(), id)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	return err
}

func (r *AuthRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM auth_identities WHERE phone = $1)`
	var exists bool
	err := r.db.pool.QueryRow(ctx, query, phone).Scan(&exists)
	return exists, err
}

func (r *AuthRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM auth_identities WHERE LOWER(email) = LOWER($1))`
	var exists bool
	err := r.db.pool.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

// ========== Account Methods ==========

// CreateAccount writes identity, credential and profile in one transaction
// and fills in their generated IDs.
func (r *AuthRepository) CreateAccount(ctx context.Context, acct *auth.Account) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := createIdentity(ctx, tx, acct.Identity); err != nil {
			return err
		}
		acct.Credential.IdentityID = acct.Identity.ID
		acct.Profile.IdentityID = acct.Identity.ID

		if err := createCredential(ctx, tx, acct.Credential); err != nil {
			return err
		}
		return createProfile(ctx, tx, acct.Profile)
	})
}

func createIdentity(ctx context.Context, q querier, identity *auth.Identity) error {
	query := `
		INSERT INTO auth_identities (phone, email, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, identity.Phone, identity.Email, identity.Role, identity.Status).
		Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

func createCredential(ctx context.Context, q querier, cred *auth.Credential) error {
	query := `
		INSERT INTO auth_credentials (identity_id, password_hash, password_changed_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, cred.IdentityID, cred.PasswordHash).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func createProfile(ctx context.Context, q querier, profile *auth.UserProfile) error {
	query := `
		INSERT INTO user_profiles (identity_id, full_name, address, cnic, service_categories, settings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	settingsJSON, err := marshalSettings(profile.Settings)
	if err != nil {
		return err
	}
	if profile.ServiceCategories == nil {
		profile.ServiceCategories = pq.StringArray{}
	}

	err = q.QueryRow(
		ctx, query,
		profile.IdentityID, profile.FullName, profile.Address, profile.CNIC,
		profile.ServiceCategories, settingsJSON,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// ========== Credential Methods ==========

func (r *AuthRepository) FindCredential(ctx context.Context, identityID int64) (*auth.Credential, error) {
	query := `
		SELECT id, identity_id, password_hash, password_changed_at, created_at, updated_at
		FROM auth_credentials
		WHERE identity_id = $1
	`
	var cred auth.Credential
	err := r.db.pool.QueryRow(ctx, query, identityID).Scan(
		&cred.ID, &cred.IdentityID, &cred.PasswordHash,
		&cred.PasswordChangedAt, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return &cred, nil
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, identityID int64, passwordHash string) error {
	query := `
		UPDATE auth_credentials
		SET password_hash = $1, password_changed_at = $2, updated_at = $2
		WHERE identity_id = $3
	`
	result, err := r.db.pool.Exec(ctx, query, passwordHash, time.Now(), identityID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ========== User Profile Methods ==========

func (r *AuthRepository) GetUserProfile(ctx context.Context, identityID int64) (*auth.UserProfile, error) {
	query := `
		SELECT id, identity_id, full_name, address, cnic, service_categories, settings, created_at, updated_at
		FROM user_profiles
		WHERE identity_id = $1
	`

	var profile auth.UserProfile
	var settingsJSON []byte

	err := r.db.pool.QueryRow(ctx, query, identityID).Scan(
		&profile.ID, &profile.IdentityID, &profile.FullName, &profile.Address,
		&profile.CNIC, &profile.ServiceCategories, &settingsJSON,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &profile.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	return &profile, nil
}

// UpdateUserProfile writes the editable profile columns. Settings are left
// alone; see UpdateSettings.
func (r *AuthRepository) UpdateUserProfile(ctx context.Context, profile *auth.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET full_name = $1, address = $2, cnic = $3, service_categories = $4, updated_at = $5
		WHERE identity_id = $6
	`
	if profile.ServiceCategories == nil {
		profile.ServiceCategories = pq.StringArray{}
	}
	result, err := r.db.pool.Exec(
		ctx, query,
		profile.FullName, profile.Address, profile.CNIC,
		profile.ServiceCategories, time.Now(), profile.IdentityID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdateSettings merges settings into the stored JSONB document.
func (r *AuthRepository) UpdateSettings(ctx context.Context, identityID int64, settings map[string]interface{}) error {
	query := `
		UPDATE user_profiles
		SET settings = settings || $1::jsonb, updated_at = $2
		WHERE identity_id = $3
	`
	settingsJSON, err := marshalSettings(settings)
	if err != nil {
		return err
	}
	result, err := r.db.pool.Exec(ctx, query, settingsJSON, time.Now(), identityID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ========== Session Methods ==========

func (r *AuthRepository) CreateSession(ctx context.Context, session *auth.Session) error {
	query := `
		INSERT INTO auth_sessions (
			identity_id, session_token, refresh_token, ip_address,
			user_agent, device_id, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, login_at, last_activity_at
	`
	return r.db.pool.QueryRow(
		ctx, query,
		session.IdentityID, session.SessionToken, session.RefreshToken,
		session.IPAddress, session.UserAgent, session.DeviceID, session.ExpiresAt,
	).Scan(&session.ID, &session.Status, &session.LoginAt, &session.LastActivityAt)
}

// FindSessionByToken only returns active, unexpired sessions.
func (r *AuthRepository) FindSessionByToken(ctx context.Context, token string) (*auth.Session, error) {
	query := `
		SELECT id, identity_id, session_token, refresh_token, ip_address, user_agent,
		       device_id, status, login_at, last_activity_at, expires_at, logout_at
		FROM auth_sessions
		WHERE session_token = $1 AND status = 'active' AND expires_at > NOW()
	`

	var session auth.Session
	err := r.db.pool.QueryRow(ctx, query, token).Scan(
		&session.ID, &session.IdentityID, &session.SessionToken, &session.RefreshToken,
		&session.IPAddress, &session.UserAgent, &session.DeviceID, &session.Status,
		&session.LoginAt, &session.LastActivityAt, &session.ExpiresAt, &session.LogoutAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *AuthRepository) InvalidateSession(ctx context.Context, id int64) error {
	query := `UPDATE auth_sessions SET status = 'revoked', logout_at = $1 WHERE id = $2`
	_, err := r.db.pool.Exec(ctx, query, time.Now(), id)
	return err
}

func (r *AuthRepository) InvalidateAllUserSessions(ctx context.Context, identityID int64) error {
	query := `
		UPDATE auth_sessions
		SET status = 'revoked', logout_at = $1
		WHERE identity_id = $2 AND status = 'active'
	`
	_, err := r.db.pool.Exec(ctx, query, time.Now(), identityID)
	return err
}

func marshalSettings(settings map[string]interface{}) ([]byte, error) {
	if settings == nil {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return b, nil
}
