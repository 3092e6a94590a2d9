package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cmdbreizh/site-backend/pkg/middleware"
)

// GenerateAdminToken creates a signed HS256 bearer token for the admin API.
// There is no login flow; the site owner mints tokens out of band.
func GenerateAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// HSVerifier validates HS256 tokens against a shared secret. It satisfies the
// middleware.Verifier interface.
type HSVerifier struct {
	secret []byte
}

func NewHSVerifier(secret string) *HSVerifier {
	return &HSVerifier{secret: []byte(secret)}
}

func (v *HSVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return mapToken{claims: claims}, nil
}

type mapToken struct {
	claims jwt.MapClaims
}

func (t mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
