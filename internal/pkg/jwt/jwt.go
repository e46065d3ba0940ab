package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	// GenerateAccessToken mints the actor claims the middleware turns back
	// into an identity.Actor.
	GenerateAccessToken(userID string, employeeID string, role identity.Role) (token string, expiresAt int64, err error)

	// GenerateSSEToken mints a short-lived token for EventSource clients,
	// which cannot set headers and pass it as a query parameter instead.
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)

	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey            string
	accessTokenExpiresIn time.Duration
	tokenAuth            *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpiresIn time.Duration) Service {
	return &JWTService{
		secretKey:            secretKey,
		accessTokenExpiresIn: accessTokenExpiresIn,
		tokenAuth:            jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID string, role identity.Role) (string, int64, error) {
	expiresAt := time.Now().Add(j.accessTokenExpiresIn).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	const expiresIn = 60

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "sse",
		"exp":     time.Now().Add(expiresIn * time.Second).Unix(),
	})
	return tokenString, expiresIn, err
}

func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", fmt.Errorf("invalid sse token: %w", err)
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}

	if typ, _ := claims["type"].(string); typ != "sse" {
		return "", fmt.Errorf("token is not an sse token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("sse token has no user_id")
	}

	return userID, nil
}
