package identity

import (
	"fmt"
	"strconv"
	"time"

	"storyhive/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "storyhive-api"
	tokenAudience = "storyhive-client"
	tokenLifetime = 7 * 24 * time.Hour
)

// Issuer mints and validates session tokens.
type Issuer struct {
	secret []byte
}

// NewIssuer creates a token issuer with the given signing secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Generate creates a signed token for the account.
func (i *Issuer) Generate(accountID uint, email string) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	expiresAt := now.Add(tokenLifetime)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(accountID), 10),
		"email": email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// TokenClaims are the validated contents of a session token.
type TokenClaims struct {
	AccountID uint
	JTI       string
	ExpiresAt time.Time
}

// Parse validates a token and returns the claims it carries.
func (i *Issuer) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return nil, models.NewAuthError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewAuthError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewAuthError("Invalid token structure - missing subject")
	}
	accountID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewAuthError("Invalid account ID in token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, models.NewAuthError("Invalid token structure - missing expiry")
	}

	jti, _ := claims["jti"].(string)

	return &TokenClaims{
		AccountID: uint(accountID),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
