package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing share token")
)

// ShareClaims grants read access to a single export artifact.
type ShareClaims struct {
	FileName string `json:"file_name"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewSigner(secret, issuer string) *Signer {
	if secret == "" {
		secret = "your-super-secret-key-change-in-production"
	}
	return &Signer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// GenerateShareToken signs a token for fileName valid for ttl.
func (s *Signer) GenerateShareToken(fileName string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &ShareClaims{
		FileName: fileName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateShareToken parses and validates a share token.
func (s *Signer) ValidateShareToken(tokenString string) (*ShareClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ShareClaims); ok && token.Valid && claims.FileName != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
