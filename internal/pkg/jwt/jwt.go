package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies the bearer tokens issued to practices and can mint
// short-lived ones for operators and integration tests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GeneratePracticeToken(subject, practiceID string, ttl time.Duration) (token string, expiresAt int64, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GeneratePracticeToken(subject, practiceID string, ttl time.Duration) (token string, expiresAt int64, err error) {
	if practiceID == "" {
		return "", 0, fmt.Errorf("practice id is required")
	}
	expiresAt = time.Now().Add(ttl).Unix()

	claims := map[string]interface{}{
		"sub":         subject,
		"practice_id": practiceID,
		"exp":         expiresAt,
	}
	jwtauth.SetIssuedNow(claims)

	_, token, err = j.tokenAuth.Encode(claims)
	return token, expiresAt, err
}
