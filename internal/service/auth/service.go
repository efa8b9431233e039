// Package auth implements user authentication and session tokens.
// It is framework-agnostic and is used by both the HTTP handlers and the manage CLI.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/domain/entity"
	"blog/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername is returned when creating a user whose name is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound is returned when deleting a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is returned for malformed, expired or revoked session tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// bcrypt ignores bytes past 72.
const maxPasswordBytes = 72

// CredentialRequirements defines password policy requirements.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// Identity is the authenticated user carried by a session.
type Identity struct {
	UserID   int64
	Username string
	IsStaff  bool
}

type sessionClaims struct {
	Name  string `json:"name"`
	Staff bool   `json:"staff"`
	jwt.RegisteredClaims
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithRequirements sets the password policy applied by CreateUser.
func WithRequirements(req CredentialRequirements) Option {
	return func(s *AuthService) { s.requirements = req }
}

// WithClock overrides time.Now for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithBcryptCost sets the hashing cost for new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// AuthService handles authentication business logic.
type AuthService struct {
	users        repository.UserRepository
	secret       []byte
	ttl          time.Duration
	requirements CredentialRequirements
	now          func() time.Time
	bcryptCost   int
	dummyHash    []byte
}

// NewAuthService creates a new authentication service.
// Tokens are signed with secret and expire after ttl.
func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration, opts ...Option) *AuthService {
	s := &AuthService{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Compared against on unknown usernames so both paths pay for a bcrypt round.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
	return s
}

// Authenticate checks the username and password against the users table.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs an HS256 session token for the user.
func (s *AuthService) IssueToken(user *entity.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Name:  user.Username,
		Staff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the identity in the claims.
func (s *AuthService) ParseToken(token string) (*Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Identity{UserID: id, Username: claims.Name, IsStaff: claims.Staff}, nil
}

// Resolve parses the token and reloads the user, so deleted users and
// revoked staff rights take effect before the token expires.
func (s *AuthService) Resolve(ctx context.Context, token string) (*Identity, error) {
	claimed, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, claimed.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	return &Identity{UserID: user.ID, Username: user.Username, IsStaff: user.IsStaff}, nil
}

// CreateUser validates the credentials, hashes the password and stores the user.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, staff bool) (*entity.User, error) {
	if err := entity.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(s.requirements, password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		IsStaff:      staff,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the user together with their articles and comments.
func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ValidatePassword applies the policy to a new password.
// Weak passwords are matched case-insensitively, exactly or as a prefix.
func ValidatePassword(req CredentialRequirements, password string) error {
	if password == "" {
		return &entity.ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) < req.MinPasswordLength {
		return &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", req.MinPasswordLength),
		}
	}
	if len(password) > maxPasswordBytes {
		return &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
		}
	}

	lower := strings.ToLower(password)
	for _, weak := range req.WeakPasswords {
		weak = strings.ToLower(weak)
		if weak != "" && strings.HasPrefix(lower, weak) {
			return &entity.ValidationError{Field: "password", Message: "is too common"}
		}
	}
	return nil
}
