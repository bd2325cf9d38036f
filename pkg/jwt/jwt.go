package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidToken     = errors.New("invalid token")
)

type Service interface {
	GenerateToken(operatorID, divisionID string, role Role, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*OperatorClaims, error)
	GenerateLoginLink(operatorID, divisionID string, role Role) (string, error)
}

type service struct {
	secret     []byte
	defaultTTL time.Duration
	baseURL    string
}

func NewService(secret string, defaultTTL time.Duration, baseURL string) Service {
	return &service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		baseURL:    baseURL,
	}
}

func (s *service) GenerateToken(operatorID, divisionID string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Division: divisionID,
		Role:     string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *service) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GenerateLoginLink builds a single-use URL handed to operator terminals
// at check-in. The token carries the division and role for the terminal.
func (s *service) GenerateLoginLink(operatorID, divisionID string, role Role) (string, error) {
	token, err := s.GenerateToken(operatorID, divisionID, role, s.defaultTTL)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s?t=%s", s.baseURL, token), nil
}
