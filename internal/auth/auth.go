package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for any pair other than the configured
// one. The message is surfaced inline to the login form.
var ErrInvalidCredentials = errors.New("invalid email or password")

var ErrInvalidToken = errors.New("invalid or expired token")

// Config holds the single fixed credential pair and token parameters. This is
// placeholder authentication by design; a production rebuild would swap this
// layer for a real credential-issuance integration.
type Config struct {
	Secret         string
	TokenTTL       time.Duration
	Email          string
	Password       string
	TechnicianName string
}

// Claims carried by an issued access token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg Config
}

func New(cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &Service{cfg: cfg}
}

// Login checks the pair against the configured credentials and issues an
// HS256 access token carrying the technician name.
func (s *Service) Login(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		Name: s.cfg.TechnicianName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// ValidateToken parses and validates an access token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenTTL exposes the configured expiry for login responses.
func (s *Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}
