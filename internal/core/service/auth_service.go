package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

const maxCPFLength = 15

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// AuthService implements registration, login and identity resolution.
type AuthService struct {
	users        ports.UserRepository
	clients      ports.ClientRepository
	transporters ports.TransporterRepository
	sessions     ports.SessionStore
	jwtSecret    string
	tokenTTL     time.Duration
	log          zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	clients ports.ClientRepository,
	transporters ports.TransporterRepository,
	sessions ports.SessionStore,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:        users,
		clients:      clients,
		transporters: transporters,
		sessions:     sessions,
		jwtSecret:    cfg.JWTSecret,
		tokenTTL:     ttl,
		log:          log,
	}
}

// tokenClaims is the JWT payload. Subject carries the user ID and ID the
// session identifier checked against the SessionStore.
type tokenClaims struct {
	CPF   string `json:"cpf"`
	Staff bool   `json:"staff"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, cpf, password string) (*domain.User, error) {
	return s.createUser(ctx, cpf, password, false)
}

// CreateSuperuser registers a staff identity. Used by the CLI only.
func (s *AuthService) CreateSuperuser(ctx context.Context, cpf, password string) (*domain.User, error) {
	return s.createUser(ctx, cpf, password, true)
}

func (s *AuthService) createUser(ctx context.Context, cpf, password string, staff bool) (*domain.User, error) {
	cpf = strings.TrimSpace(cpf)
	verr := &domain.ValidationError{Fields: map[string]string{}}
	if cpf == "" {
		verr.Fields["cpf"] = "cpf is required"
	} else if len(cpf) > maxCPFLength {
		verr.Fields["cpf"] = fmt.Sprintf("cpf must be at most %d characters", maxCPFLength)
	}
	if password == "" {
		verr.Fields["password"] = "password is required"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		CPF:          cpf,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Bool("staff", staff).Msg("identity registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, cpf, password string) (string, *domain.User, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	tokenID := uuid.NewString()
	token, err := s.generateToken(user, tokenID)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Save(ctx, user.ID, tokenID, s.tokenTTL); err != nil {
		return "", nil, fmt.Errorf("login: save session: %w", err)
	}

	return token, user, nil
}

// Logout revokes the identity's active session.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Uint("user_id", userID).Msg("session revoked")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Authenticate verifies the token signature and expiry, then requires its ID
// to match the identity's active session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	current, err := s.sessions.Current(ctx, uint(userID))
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if current == "" || current != claims.ID {
		return nil, domain.ErrSessionRevoked
	}

	return &domain.Principal{
		UserID:  uint(userID),
		CPF:     claims.CPF,
		IsStaff: claims.Staff,
		TokenID: claims.ID,
	}, nil
}

// ResolveIdentity looks up both profile kinds once and returns the tagged identity.
func (s *AuthService) ResolveIdentity(ctx context.Context, p domain.Principal) (domain.Identity, error) {
	client, err := s.clients.FindByUserID(ctx, p.UserID)
	if err != nil && !errors.Is(err, domain.ErrClientNotFound) {
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	transporter, err := s.transporters.FindByUserID(ctx, p.UserID)
	if err != nil && !errors.Is(err, domain.ErrTransporterNotFound) {
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	id, err := domain.ResolveIdentity(p, client, transporter)
	if err != nil {
		s.log.Warn().Uint("user_id", p.UserID).Msg("identity holds both profiles")
		return domain.Identity{}, err
	}
	return id, nil
}

func (s *AuthService) generateToken(user *domain.User, tokenID string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		CPF:   user.CPF,
		Staff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
