package service

import (
	"os"
	"time"

	"anoa.com/wikigradebook/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const formTokenAudience = "gradebook-submit"

// FormTokenService issues and checks the anti-forgery token the submit
// endpoint requires. The token is a short-lived JWT bound to the acting
// user, so a token minted for one account cannot authorize a submission
// from another.
type FormTokenService interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
	Verify(token string, userID uuid.UUID) error
}

type formTokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewFormTokenService(ttl time.Duration) FormTokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "12345"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &formTokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *formTokenService) Issue(userID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{formTokenAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func (s *formTokenService) Verify(tokenString string, userID uuid.UUID) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.ErrUnauthorized
		}
		return s.secret, nil
	}, jwt.WithAudience(formTokenAudience))

	if err != nil || !token.Valid {
		return apperror.New(401, "invalid or expired submit token", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != userID.String() {
		return apperror.New(403, "submit token does not belong to the acting user", apperror.ErrForbidden)
	}

	return nil
}
