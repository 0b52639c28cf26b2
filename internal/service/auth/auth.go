// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ustaad-service/internal/domain/auth"
	xerrors "ustaad-service/internal/pkg/errors"
	"ustaad-service/internal/pkg/jwt"
	"ustaad-service/internal/pkg/session"
	"ustaad-service/internal/pkg/validation"
	"ustaad-service/internal/platform/metrics"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore is the durable side of identities, credentials, profiles and
// sessions.
type AccountStore interface {
	FindIdentityByPhone(ctx context.Context, phone string) (*auth.Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (*auth.Identity, error)
	FindIdentityByID(ctx context.Context, id int64) (*auth.Identity, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateIdentityLastLogin(ctx context.Context, id int64) error
	UpdateIdentityEmail(ctx context.Context, id int64, email *string) error

	CreateAccount(ctx context.Context, acct *auth.Account) error
	FindCredential(ctx context.Context, identityID int64) (*auth.Credential, error)
	UpdatePassword(ctx context.Context, identityID int64, passwordHash string) error

	GetUserProfile(ctx context.Context, identityID int64) (*auth.UserProfile, error)
	UpdateUserProfile(ctx context.Context, profile *auth.UserProfile) error
	UpdateSettings(ctx context.Context, identityID int64, settings map[string]interface{}) error

	CreateSession(ctx context.Context, s *auth.Session) error
}

type ProfileCache interface {
	Get(ctx context.Context, identityID int64) (*auth.Me, bool, error)
	Set(ctx context.Context, me *auth.Me) error
	Invalidate(ctx context.Context, identityID int64) error
}

// Disconnector closes live sockets of a user whose sessions ended.
type Disconnector interface {
	ForceLogout(identityID int64, jti, reason string)
}

type AuthService struct {
	accounts       AccountStore
	cache          ProfileCache
	jwtManager     *jwt.Manager
	sessionManager *session.Manager
	rateLimiter    *session.RateLimiter
	hub            Disconnector
	metrics        *metrics.Metrics
	logger         *zap.Logger
	bcryptCost     int
}

func NewAuthService(
	accounts AccountStore,
	cache ProfileCache,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	rateLimiter *session.RateLimiter,
	hub Disconnector,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts:       accounts,
		cache:          cache,
		jwtManager:     jwtManager,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		hub:            hub,
		metrics:        m,
		logger:         logger,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// ========== Registration ==========

// Register creates a customer or provider account and logs it in. Field
// problems, including an already registered phone or email, come back as
// *validation.FormError.
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error) {
	phoneDisplay := validation.FormatPhone(req.Phone)
	cnic := validation.FormatCNIC(req.CNIC)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))

	errs := validation.ValidateRegisterForm(validation.RegisterForm{
		FullName:          req.FullName,
		Phone:             phoneDisplay,
		Email:             email,
		Password:          req.Password,
		ConfirmPassword:   req.ConfirmPassword,
		Role:              role,
		CNIC:              cnic,
		ServiceCategories: req.ServiceCategories,
	})
	if err := validation.NewFormError(errs); err != nil {
		return nil, err
	}

	phone := validation.CleanPhone(phoneDisplay)

	exists, err := s.accounts.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if exists {
		errs.Phone = validation.ErrorMessage(validation.MsgPhoneTaken)
	}
	if email != "" {
		exists, err := s.accounts.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			errs.Email = validation.ErrorMessage(validation.MsgEmailTaken)
		}
	}
	if err := validation.NewFormError(errs); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := &auth.Account{
		Identity: &auth.Identity{
			Phone:  phone,
			Email:  sql.NullString{String: email, Valid: email != ""},
			Role:   role,
			Status: auth.StatusActive,
		},
		Credential: &auth.Credential{PasswordHash: string(hashedPassword)},
		Profile: &auth.UserProfile{
			FullName: strings.TrimSpace(req.FullName),
			CNIC:     sql.NullString{String: cnic, Valid: cnic != ""},
			Settings: map[string]interface{}{},
		},
	}
	if role == auth.RoleProvider {
		acct.Profile.ServiceCategories = pq.StringArray(req.ServiceCategories)
	}

	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, validation.NewFormError(validation.RegisterFormErrors{
				Phone: validation.ErrorMessage(validation.MsgPhoneTaken),
			})
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered",
		zap.Int64("identity_id", acct.Identity.ID),
		zap.String("role", role))

	return s.loginWithIdentity(ctx, acct.Identity, req.Device, req.IPAddress, req.UserAgent)
}

// ========== Login ==========

// Login accepts a phone number in any common format or an email address.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	if err := validation.NewFormError(validation.ValidateLoginForm(validation.LoginForm{
		Identifier: req.Identifier,
		Password:   req.Password,
	})); err != nil {
		return nil, err
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	byEmail := strings.Contains(identifier, "@")
	if !byEmail {
		identifier, _ = validation.NormalizePhone(identifier)
	}

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, identifier)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	var identity *auth.Identity
	if byEmail {
		identity, err = s.accounts.FindIdentityByEmail(ctx, identifier)
	} else {
		identity, err = s.accounts.FindIdentityByPhone(ctx, identifier)
	}
	if err != nil {
		s.metrics.IncrementLoginFailures()
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCreds
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	cred, err := s.accounts.FindCredential(ctx, identity.ID)
	if err != nil {
		s.metrics.IncrementLoginFailures()
		return nil, xerrors.ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.IncrementLoginFailures()
		return nil, xerrors.ErrInvalidCreds
	}

	if identity.Status != auth.StatusActive {
		return nil, xerrors.ErrAccountInactive
	}

	if err := s.accounts.UpdateIdentityLastLogin(ctx, identity.ID); err != nil {
		s.logger.Error("failed to update last login", zap.Error(err))
	}
	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, identifier); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return s.loginWithIdentity(ctx, identity, req.Device, req.IPAddress, req.UserAgent)
}

// loginWithIdentity creates the session and signs the token pair.
func (s *AuthService) loginWithIdentity(ctx context.Context, identity *auth.Identity, device, ipAddress, userAgent string) (*auth.LoginResponse, error) {
	gen := s.jwtManager.Generator

	accessToken, accessJTI, err := gen.GenerateAccessToken(identity.ID, identity.Role, device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshJTI, err := gen.GenerateRefreshToken(identity.ID, device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(gen.TTL)

	dbSession := &auth.Session{
		IdentityID:   identity.ID,
		SessionToken: accessJTI,
		RefreshToken: sql.NullString{String: refreshJTI, Valid: true},
		IPAddress:    sql.NullString{String: ipAddress, Valid: ipAddress != ""},
		UserAgent:    sql.NullString{String: userAgent, Valid: userAgent != ""},
		DeviceID:     sql.NullString{String: device, Valid: device != ""},
		ExpiresAt:    expiresAt,
	}
	if err := s.accounts.CreateSession(ctx, dbSession); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.sessionManager.CreateSession(ctx, &session.SessionData{
		JTI:            accessJTI,
		IdentityID:     identity.ID,
		SessionID:      dbSession.ID,
		Role:           identity.Role,
		Phone:          identity.Phone,
		Device:         device,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	me, err := s.loadMe(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &auth.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(gen.TTL.Seconds()),
		ExpiresAt:    expiresAt,
		User:         *me,
	}, nil
}

// ========== Tokens ==========

// ValidateToken verifies an access token and confirms its session is live.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, err.Error())
	}

	blacklisted, err := s.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, xerrors.ErrSessionExpired
	}

	if _, err := s.sessionManager.GetSession(ctx, claims.IdentityID, claims.ID); err != nil {
		return nil, xerrors.ErrSessionExpired
	}
	return claims, nil
}

// ========== Logout ==========

// Logout ends the session and blacklists its JTI for the rest of the token TTL.
func (s *AuthService) Logout(ctx context.Context, identityID int64, jti string) error {
	if err := s.sessionManager.InvalidateSession(ctx, identityID, jti); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	if err := s.sessionManager.BlacklistToken(ctx, jti, s.jwtManager.Generator.TTL); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.hub != nil {
		s.hub.ForceLogout(identityID, jti, "User logged out")
	}
	return nil
}

// ========== Profile ==========

// GetMe reads the cached profile, loading and caching it on a miss.
func (s *AuthService) GetMe(ctx context.Context, identityID int64) (*auth.Me, error) {
	if me, ok, err := s.cache.Get(ctx, identityID); err != nil {
		s.logger.Warn("profile cache read failed", zap.Int64("identity_id", identityID), zap.Error(err))
	} else if ok {
		return me, nil
	}

	identity, err := s.accounts.FindIdentityByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.loadMe(ctx, identity)
}

func (s *AuthService) loadMe(ctx context.Context, identity *auth.Identity) (*auth.Me, error) {
	profile, err := s.accounts.GetUserProfile(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	me := buildMe(identity, profile)
	if err := s.cache.Set(ctx, me); err != nil {
		s.logger.Warn("profile cache write failed", zap.Int64("identity_id", identity.ID), zap.Error(err))
	}
	return me, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *AuthService) UpdateProfile(ctx context.Context, identityID int64, req *auth.UpdateProfileRequest) (*auth.Me, error) {
	form := validation.ProfileForm{
		FullName: req.FullName,
		Address:  req.Address,
	}
	var email, cnic *string
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &e
		form.Email = email
	}
	if req.CNIC != nil {
		c := validation.FormatCNIC(*req.CNIC)
		cnic = &c
		form.CNIC = cnic
	}
	if err := validation.NewFormError(validation.ValidateProfileForm(form)); err != nil {
		return nil, err
	}

	identity, err := s.accounts.FindIdentityByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	profile, err := s.accounts.GetUserProfile(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	if email != nil && *email != identity.Email.String {
		if err := s.accounts.UpdateIdentityEmail(ctx, identityID, email); err != nil {
			if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
				return nil, validation.NewFormError(validation.ProfileFormErrors{
					Email: validation.ErrorMessage(validation.MsgEmailTaken),
				})
			}
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Address != nil {
		profile.Address = sql.NullString{String: strings.TrimSpace(*req.Address), Valid: true}
	}
	if cnic != nil {
		profile.CNIC = sql.NullString{String: *cnic, Valid: true}
	}
	if req.ServiceCategories != nil && identity.Role == auth.RoleProvider {
		profile.ServiceCategories = pq.StringArray(req.ServiceCategories)
	}

	if err := s.accounts.UpdateUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.invalidateProfile(ctx, identityID)
	return s.GetMe(ctx, identityID)
}

// UpdateSettings merges settings into the stored app settings.
func (s *AuthService) UpdateSettings(ctx context.Context, identityID int64, settings map[string]interface{}) (*auth.Me, error) {
	if err := s.accounts.UpdateSettings(ctx, identityID, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.invalidateProfile(ctx, identityID)
	return s.GetMe(ctx, identityID)
}

func (s *AuthService) invalidateProfile(ctx context.Context, identityID int64) {
	if err := s.cache.Invalidate(ctx, identityID); err != nil {
		s.logger.Warn("profile cache invalidate failed", zap.Int64("identity_id", identityID), zap.Error(err))
	}
}

// ========== Password Management ==========

// ChangePassword verifies the current password and ends every session.
func (s *AuthService) ChangePassword(ctx context.Context, identityID int64, req *auth.ChangePasswordRequest) error {
	cred, err := s.accounts.FindCredential(ctx, identityID)
	if err != nil {
		return fmt.Errorf("credential not found: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrInvalidCreds
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, identityID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessionManager.InvalidateAllUserSessions(ctx, identityID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}
	if s.hub != nil {
		s.hub.ForceLogout(identityID, "", "Password changed")
	}
	return nil
}

func buildMe(identity *auth.Identity, profile *auth.UserProfile) *auth.Me {
	me := &auth.Me{
		IdentityID: identity.ID,
		Phone:      identity.Phone,
		Email:      identity.Email.String,
		Role:       identity.Role,
		FullName:   profile.FullName,
		Address:    profile.Address.String,
		CNIC:       profile.CNIC.String,
		Settings:   profile.Settings,
	}
	if len(profile.ServiceCategories) > 0 {
		me.ServiceCategories = []string(profile.ServiceCategories)
	}
	return me
}
