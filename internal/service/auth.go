package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/domain/dto"
)

var (
	// ErrInvalidCredentials is returned when the username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned when a token is malformed, forged or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
)

const tokenIssuer = "quote-service"

// AuthService authenticates the administrator and validates their tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*dto.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*dto.Claims, error)
}

// adminClaims is the JWT payload. The subject is the admin username.
type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthService implements AuthService for the single admin account
// configured through the environment.
type AdminAuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAdminAuthService creates the admin authenticator from cfg.
func NewAdminAuthService(cfg config.AuthConfig) *AdminAuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AdminAuthService{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
		secret:       []byte(cfg.JWTSecretKey),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login checks the credentials and issues a signed access token.
func (s *AdminAuthService) Login(_ context.Context, username, password string) (*dto.LoginResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// The hash is always compared so a wrong username costs as much as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := adminClaims{
		Role: dto.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

// ValidateToken parses tokenString and returns its claims.
func (s *AdminAuthService) ValidateToken(_ context.Context, tokenString string) (*dto.Claims, error) {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role != dto.AdminRole {
		return nil, ErrInvalidToken
	}

	return &dto.Claims{Subject: claims.Subject, Role: claims.Role}, nil
}
