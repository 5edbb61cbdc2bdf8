package tokens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

// ErrUnsupportedAlgorithm is returned when the configured algorithm is unknown to the JWT library.
var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

var _ ports.TokenSigner = (*JWTSigner)(nil)

// JWTSigner signs claims as a JWT. HMAC algorithms use the secret as raw bytes;
// RSA, RSA-PSS, ECDSA and EdDSA algorithms expect the secret to hold a PEM private key.
//
// Key problems are not reported at construction: every Sign call returns the same
// error so that token requests fail individually instead of the server refusing to start.
type JWTSigner struct {
	method jwt.SigningMethod
	key    any
	err    error
}

// NewJWTSigner prepares a signer for alg using secret.
func NewJWTSigner(alg, secret string) *JWTSigner {
	method := jwt.GetSigningMethod(strings.TrimSpace(alg))
	if method == nil {
		return &JWTSigner{err: fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)}
	}
	key, err := parseKey(method, secret)
	if err != nil {
		return &JWTSigner{method: method, err: err}
	}
	return &JWTSigner{method: method, key: key}
}

// Algorithm returns the resolved algorithm name, or "" if it was not recognized.
func (s *JWTSigner) Algorithm() string {
	if s.method == nil {
		return ""
	}
	return s.method.Alg()
}

// Err reports the key or algorithm problem that will make every Sign call fail.
func (s *JWTSigner) Err() error {
	return s.err
}

// Sign returns the compact serialization of a token carrying claims.
func (s *JWTSigner) Sign(claims map[string]any) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	token := jwt.NewWithClaims(s.method, jwt.MapClaims(claims))
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parseKey(method jwt.SigningMethod, secret string) (any, error) {
	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		if secret == "" {
			return nil, errors.New("secret must not be empty for HMAC algorithms")
		}
		return []byte(secret), nil
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("invalid RSA private key for %s: %w", method.Alg(), err)
		}
		return key, nil
	case *jwt.SigningMethodECDSA:
		key, err := jwt.ParseECPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("invalid EC private key for %s: %w", method.Alg(), err)
		}
		return key, nil
	case *jwt.SigningMethodEd25519:
		key, err := jwt.ParseEdPrivateKeyFromPEM([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("invalid Ed25519 private key for %s: %w", method.Alg(), err)
		}
		return key, nil
	default:
		if method == jwt.SigningMethodNone {
			return jwt.UnsafeAllowNoneSignatureType, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, method.Alg())
	}
}
