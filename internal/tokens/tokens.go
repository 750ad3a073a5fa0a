package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/models"
	"github.com/factdeck/factdeck/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateAccessToken creates a signed JWT access token for the user
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if cfg.JWT.Issuer != "" {
		claims["iss"] = cfg.JWT.Issuer
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Verifier checks HS256 access tokens issued by GenerateAccessToken.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{secret: []byte(cfg.JWT.Secret), issuer: cfg.JWT.Issuer}
}

type verifiedToken struct {
	claims jwt.MapClaims
}

// Claims decodes the token claims into v (a map or a struct with json tags).
func (t *verifiedToken) Claims(v interface{}) error {
	if m, ok := v.(*map[string]interface{}); ok {
		*m = map[string]interface{}(t.claims)
		return nil
	}
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &verifiedToken{claims: claims}, nil
}
