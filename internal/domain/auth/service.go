package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/notify"
)

const (
	activationTokenTTL   = 24 * time.Hour
	verificationTokenTTL = 24 * time.Hour
	tempPasswordLength   = 12
)

// Service implements the authentication flows: credential login, token
// refresh with rotation, account activation, staff registration, logout,
// hospital onboarding and hospital email verification.
type Service struct {
	users        user.Repository
	hospitals    hospital.Repository
	sessions     *SessionStore
	codec        *auth.Codec
	mailer       notify.Mailer
	logger       zerolog.Logger
	autoActivate bool
	production   bool
	frontendURL  string
}

type ServiceConfig struct {
	AutoActivateUsers bool
	Production        bool
	FrontendURL       string
}

func NewService(users user.Repository, hospitals hospital.Repository, sessions *SessionStore,
	codec *auth.Codec, mailer notify.Mailer, logger zerolog.Logger, cfg ServiceConfig) *Service {
	return &Service{
		users:        users,
		hospitals:    hospitals,
		sessions:     sessions,
		codec:        codec,
		mailer:       mailer,
		logger:       logger,
		autoActivate: cfg.AutoActivateUsers,
		production:   cfg.Production,
		frontendURL:  cfg.FrontendURL,
	}
}

// LoginResult is the outcome of a successful credential exchange.
type LoginResult struct {
	User        *user.User
	Tokens      auth.TokenPair
	Permissions []string
}

// Login exchanges an email and password for a token pair. The email is looked
// up across tenants; the tenant id travels back inside the issued tokens.
// Wrong credentials, a locked account and an expired password all surface as
// the same 401 to keep the endpoint from acting as an account oracle for
// anything beyond status.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, user.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}

	if !u.CheckPassword(password) {
		u.LoginAttempts++
		if err := s.users.Update(ctx, u); err != nil {
			s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to record login attempt")
		}
		return nil, apperr.Unauthorized("invalid credentials")
	}

	switch u.Status {
	case user.StatusActive:
	case user.StatusLocked:
		return nil, apperr.Unauthorized("account is locked, contact your administrator")
	case user.StatusPasswordExpired:
		return nil, apperr.Unauthorized("password has expired, reset it to continue")
	default:
		return nil, apperr.Unauthorized("account is not active")
	}

	permissions := auth.ResolvePermissions(u.Roles)
	tokens, err := s.codec.Issue(u.ID.String(), u.TenantID, u.Roles, permissions)
	if err != nil {
		return nil, apperr.Internal("failed to issue tokens", err)
	}
	if err := s.sessions.Store(ctx, u.TenantID, u.ID, tokens.RefreshToken); err != nil {
		return nil, apperr.Internal("failed to store session", err)
	}

	now := time.Now()
	u.LastLogin = &now
	u.LoginAttempts = 0
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to record last login")
	}

	s.logger.Info().
		Str("user_id", u.ID.String()).
		Str("tenant_id", u.TenantID).
		Strs("roles", u.Roles).
		Msg("user logged in")

	return &LoginResult{User: u, Tokens: tokens, Permissions: permissions}, nil
}

// Refresh rotates a refresh token. Roles and permissions are re-read from the
// credential store, so a role change takes effect at the next refresh rather
// than waiting for the refresh token itself to expire.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("refresh token is required")
	}

	_, u, err := s.sessions.Verify(ctx, refreshToken)
	if errors.Is(err, auth.ErrInvalidToken) {
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}
	if err != nil {
		return nil, apperr.Internal("failed to verify session", err)
	}

	if u.Status != user.StatusActive {
		return nil, apperr.Unauthorized("account is not active")
	}

	permissions := auth.ResolvePermissions(u.Roles)
	tokens, err := s.codec.Issue(u.ID.String(), u.TenantID, u.Roles, permissions)
	if err != nil {
		return nil, apperr.Internal("failed to issue tokens", err)
	}
	if err := s.sessions.Rotate(ctx, u.TenantID, u.ID, refreshToken, tokens.RefreshToken); err != nil {
		return nil, apperr.Internal("failed to rotate session", err)
	}

	return &LoginResult{User: u, Tokens: tokens, Permissions: permissions}, nil
}

// Activate turns an INACTIVE account ACTIVE via its emailed activation token
// and logs the user straight in. An expired token is rejected without
// changing the account, so the user can request a fresh link.
func (s *Service) Activate(ctx context.Context, tenantID, token string) (*LoginResult, error) {
	if tenantID == "" || token == "" {
		return nil, apperr.Validation("tenantId and activation token are required")
	}

	u, err := s.users.GetByActivationToken(ctx, tenantID, token)
	if errors.Is(err, user.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid activation token")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up activation token", err)
	}

	if u.ActivationTokenExpiry == nil || time.Now().After(*u.ActivationTokenExpiry) {
		return nil, apperr.Unauthorized("activation token has expired")
	}
	if u.Status != user.StatusInactive {
		return nil, apperr.Validation("account is already active")
	}

	u.Status = user.StatusActive
	u.ActivationToken = nil
	u.ActivationTokenExpiry = nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("failed to activate user", err)
	}

	permissions := auth.ResolvePermissions(u.Roles)
	tokens, err := s.codec.Issue(u.ID.String(), u.TenantID, u.Roles, permissions)
	if err != nil {
		return nil, apperr.Internal("failed to issue tokens", err)
	}
	if err := s.sessions.Store(ctx, u.TenantID, u.ID, tokens.RefreshToken); err != nil {
		return nil, apperr.Internal("failed to store session", err)
	}

	s.logger.Info().
		Str("user_id", u.ID.String()).
		Str("tenant_id", u.TenantID).
		Msg("user activated")

	return &LoginResult{User: u, Tokens: tokens, Permissions: permissions}, nil
}

// RegisterUserInput is the staff self-registration payload.
type RegisterUserInput struct {
	TenantID   string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Phone      string
	Department string
	Roles      []string
}

// RegisterUserResult reports the created account. Tokens and Permissions are
// set only on the auto-activate path, where registration doubles as a login.
// ActivationLink is populated outside production so integration environments
// can complete the flow without a mailbox.
type RegisterUserResult struct {
	User           *user.User
	Tokens         *auth.TokenPair
	Permissions    []string
	ActivationLink string
}

// RegisterUser creates a staff account under an existing, active hospital.
// New accounts start INACTIVE and receive an activation email unless
// auto-activation is enabled, which is refused outright in production.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (*RegisterUserResult, error) {
	if in.TenantID == "" || in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("tenantId, firstName, lastName, email and password are required")
	}
	if !user.ValidatePassword(in.Password) {
		return nil, apperr.Validation("password must be at least 8 characters with uppercase, lowercase, number and special character")
	}

	h, err := s.hospitals.GetByTenantID(ctx, in.TenantID)
	if errors.Is(err, hospital.ErrNotFound) {
		return nil, apperr.Validation("hospital not found or not active")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up hospital", err)
	}
	if h.Status != hospital.StatusActive {
		return nil, apperr.Validation("hospital not found or not active")
	}

	// Roles are optional at registration; an admin assigns them at approval.
	for _, role := range in.Roles {
		if !auth.KnownRole(role) {
			return nil, apperr.Validation("unknown role: " + role)
		}
	}

	u := &user.User{
		TenantID:   in.TenantID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      strings.ToLower(in.Email),
		Username:   user.GenerateUsername(in.FirstName, in.LastName, h.Domain),
		Phone:      in.Phone,
		Department: in.Department,
		Roles:      in.Roles,
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	result := &RegisterUserResult{User: u}

	if s.autoActivate {
		if s.production {
			return nil, apperr.Validation("automatic account activation is not allowed in production")
		}
		u.Status = user.StatusActive
	} else {
		token, err := randomToken()
		if err != nil {
			return nil, apperr.Internal("failed to generate activation token", err)
		}
		expiry := time.Now().Add(activationTokenTTL)
		u.Status = user.StatusInactive
		u.ActivationToken = &token
		u.ActivationTokenExpiry = &expiry
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, apperr.Conflict("a user with this email already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	// Auto-activated accounts are logged in on the spot.
	if u.Status == user.StatusActive {
		permissions := auth.ResolvePermissions(u.Roles)
		tokens, err := s.codec.Issue(u.ID.String(), u.TenantID, u.Roles, permissions)
		if err != nil {
			return nil, apperr.Internal("failed to issue tokens", err)
		}
		if err := s.sessions.Store(ctx, u.TenantID, u.ID, tokens.RefreshToken); err != nil {
			return nil, apperr.Internal("failed to store session", err)
		}
		result.Tokens = &tokens
		result.Permissions = permissions
	}

	if u.ActivationToken != nil {
		link := s.frontendURL + "/activate?tenantId=" + u.TenantID + "&token=" + *u.ActivationToken
		s.sendMail(ctx, u.Email, "Activate your account",
			"Hello "+u.FirstName+",\n\nActivate your account within 24 hours: "+link+"\n")
		if !s.production {
			result.ActivationLink = link
		}
	}

	s.logger.Info().
		Str("user_id", u.ID.String()).
		Str("tenant_id", u.TenantID).
		Str("status", u.Status).
		Msg("user registered")

	return result, nil
}

// Logout revokes every live session for the user. It always succeeds from the
// caller's point of view once the account exists; revoking zero sessions is
// not an error.
func (s *Service) Logout(ctx context.Context, tenantID string, userID uuid.UUID) error {
	if err := s.sessions.InvalidateAll(ctx, tenantID, userID); err != nil {
		return apperr.Internal("failed to invalidate sessions", err)
	}
	s.logger.Info().
		Str("user_id", userID.String()).
		Str("tenant_id", tenantID).
		Msg("user logged out")
	return nil
}

// RegisterHospitalInput is the hospital onboarding payload.
type RegisterHospitalInput struct {
	Name          string
	Address       string
	City          string
	State         string
	ZipCode       string
	ContactNumber string
	AdminEmail    string
	LicenseNumber string
	Domain        string
	AdminFirst    string
	AdminLast     string
}

// RegisterHospitalResult reports the onboarded hospital and its generated
// admin account. TempPassword is returned exactly once and never stored in
// the clear.
type RegisterHospitalResult struct {
	Hospital         *hospital.Hospital
	Admin            *user.User
	TempPassword     string
	VerificationLink string
}

// RegisterHospital onboards a hospital: a fresh tenant id, a PENDING record
// awaiting email verification, and a HOSPITAL_ADMIN account with a one-time
// temporary password.
func (s *Service) RegisterHospital(ctx context.Context, in RegisterHospitalInput) (*RegisterHospitalResult, error) {
	if in.Name == "" || in.AdminEmail == "" || in.LicenseNumber == "" || in.Domain == "" {
		return nil, apperr.Validation("name, adminEmail, licenseNumber and domain are required")
	}

	token, err := randomToken()
	if err != nil {
		return nil, apperr.Internal("failed to generate verification token", err)
	}
	expiry := time.Now().Add(verificationTokenTTL)

	h := &hospital.Hospital{
		TenantID:                uuid.NewString(),
		Name:                    in.Name,
		Address:                 in.Address,
		City:                    optional(in.City),
		State:                   optional(in.State),
		ZipCode:                 optional(in.ZipCode),
		ContactNumber:           in.ContactNumber,
		AdminEmail:              strings.ToLower(in.AdminEmail),
		LicenseNumber:           in.LicenseNumber,
		Domain:                  strings.ToLower(in.Domain),
		Status:                  hospital.StatusPending,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}
	if err := s.hospitals.Create(ctx, h); err != nil {
		if errors.Is(err, hospital.ErrDuplicate) {
			return nil, apperr.Conflict("a hospital with this license number is already registered")
		}
		return nil, apperr.Internal("failed to create hospital", err)
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, apperr.Internal("failed to generate temporary password", err)
	}

	adminFirst := in.AdminFirst
	if adminFirst == "" {
		adminFirst = "Hospital"
	}
	adminLast := in.AdminLast
	if adminLast == "" {
		adminLast = "Admin"
	}

	admin := &user.User{
		TenantID:  h.TenantID,
		FirstName: adminFirst,
		LastName:  adminLast,
		Email:     h.AdminEmail,
		Username:  user.GenerateUsername(adminFirst, adminLast, h.Domain),
		Roles:     []string{auth.RoleHospitalAdmin},
		Status:    user.StatusActive,
	}
	if err := admin.SetPassword(tempPassword); err != nil {
		return nil, apperr.Internal("failed to hash temporary password", err)
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, apperr.Conflict("a user with this admin email already exists")
		}
		return nil, apperr.Internal("failed to create admin user", err)
	}

	link := s.frontendURL + "/verify-email?token=" + token
	s.sendMail(ctx, h.AdminEmail, "Verify your hospital registration",
		"Hello,\n\nVerify "+h.Name+" within 24 hours: "+link+"\n")

	s.logger.Info().
		Str("tenant_id", h.TenantID).
		Str("hospital", h.Name).
		Msg("hospital registered")

	return &RegisterHospitalResult{
		Hospital:         h,
		Admin:            admin,
		TempPassword:     tempPassword,
		VerificationLink: link,
	}, nil
}

// VerifyEmail confirms a hospital registration from its emailed verification
// token and moves the hospital to VERIFIED.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*hospital.Hospital, error) {
	if token == "" {
		return nil, apperr.Validation("verification token is required")
	}

	h, err := s.hospitals.GetByVerificationToken(ctx, token)
	if errors.Is(err, hospital.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid verification token")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up verification token", err)
	}

	if h.VerificationTokenExpiry == nil || time.Now().After(*h.VerificationTokenExpiry) {
		return nil, apperr.Unauthorized("verification token has expired")
	}
	if h.Status != hospital.StatusPending {
		return nil, apperr.Validation("hospital is already verified")
	}

	now := time.Now()
	h.Status = hospital.StatusVerified
	h.VerificationToken = nil
	h.VerificationTokenExpiry = nil
	h.VerifiedAt = &now
	if err := s.hospitals.Update(ctx, h); err != nil {
		return nil, apperr.Internal("failed to verify hospital", err)
	}

	s.logger.Info().
		Str("tenant_id", h.TenantID).
		Str("hospital", h.Name).
		Msg("hospital verified")

	return h, nil
}

// sendMail delivers best-effort: a mail failure is logged and never fails the
// surrounding operation.
func (s *Service) sendMail(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("to", to).Msg("failed to send email")
	}
}

// optional maps an empty string to a NULL-able column value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const tempPasswordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789@$!%*?&"

func generateTempPassword() (string, error) {
	for {
		buf := make([]byte, tempPasswordLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordAlphabet))))
			if err != nil {
				return "", err
			}
			buf[i] = tempPasswordAlphabet[n.Int64()]
		}
		pw := string(buf)
		if user.ValidatePassword(pw) {
			return pw, nil
		}
	}
}
