package jwtinfra

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/go-crm-nosql/internal/config"
	"github.com/go-crm-nosql/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every bearer token and required on verification.
const Issuer = "go-crm"

// Claims is the bearer token payload. UserID mirrors the subject so
// handlers need not parse registered claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider issues and checks owner bearer tokens (RS256).
type Provider struct {
	signKey   *rsa.PrivateKey
	verifyKey *rsa.PublicKey
	ttl       time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// NewProvider loads the PEM key pair named in the config.
func NewProvider(cfg *config.Config) (*Provider, error) {
	signKey, err := readKey(cfg.JWTPrivateKeyPath, jwt.ParseRSAPrivateKeyFromPEM)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	verifyKey, err := readKey(cfg.JWTPublicKeyPath, jwt.ParseRSAPublicKeyFromPEM)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	return NewProviderFromKeys(signKey, verifyKey, time.Duration(cfg.JWTExpiryDays)*24*time.Hour), nil
}

func readKey[K any](path string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}
	key, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

// NewProviderFromKeys builds a provider from already parsed keys.
func NewProviderFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, ttl time.Duration) *Provider {
	p := &Provider{signKey: priv, verifyKey: pub, ttl: ttl, now: time.Now}
	p.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return p.now() }),
	)
	return p
}

// Sign issues a bearer token for the owner account.
func (p *Provider) Sign(userID, email string) (string, error) {
	issued := p.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(p.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry. Every rejection wraps
// domain.ErrUnauthorized.
func (p *Provider) Verify(bearer string) (*Claims, error) {
	claims := &Claims{}
	if _, err := p.parser.ParseWithClaims(bearer, claims, func(*jwt.Token) (interface{}, error) {
		return p.verifyKey, nil
	}); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, fmt.Errorf("token subject mismatch: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}
