package jwt

import (
	"errors"
	"strings"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// ErrSigningKeyTooShort is returned when the HS256 signing key is less than 32 bytes.
var ErrSigningKeyTooShort = errors.New("HS256 signing key must be at least 32 bytes (256 bits)")

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a Signer.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the token audiences.
	Audiences []string
	// TTL is the token time-to-live.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Signer mints HS256 tokens.
type Signer struct {
	secret    []byte
	issuer    string
	audiences []string
	ttl       time.Duration
	clock     clocker
	uuid      generator
}

// NewHS256 constructs a Signer.
func NewHS256(cfg Config) (*Signer, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrSigningKeyTooShort
	}

	return &Signer{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       cfg.TTL,
		clock:     cfg.Clock,
		uuid:      cfg.UUID,
	}, nil
}

// TTL returns the lifetime of minted tokens.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign creates a token for subject carrying the registered claims plus extra.
func (s *Signer) Sign(subject string, extra map[string]any) (string, error) {
	now := s.clock.Now()

	claims := libJWT.MapClaims{
		"jti": s.uuid.Generate(),
		"sub": subject,
		"iss": s.issuer,
		"iat": libJWT.NewNumericDate(now),
		"nbf": libJWT.NewNumericDate(now),
		"exp": libJWT.NewNumericDate(now.Add(s.ttl)),
	}
	if len(s.audiences) > 0 {
		claims["aud"] = s.audiences
	}
	for k, v := range extra {
		if _, reserved := claims[k]; !reserved {
			claims[k] = v
		}
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses token and checks its signature, issuer and expiry. It
// returns the subject.
func (s *Signer) Verify(token string) (string, error) {
	var claims libJWT.RegisteredClaims
	_, err := libJWT.ParseWithClaims(token, &claims,
		func(*libJWT.Token) (any, error) { return s.secret, nil },
		libJWT.WithIssuer(s.issuer),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// Subject returns the "sub" claim of credential without verifying it. The
// credential may carry a "Bearer " prefix. It returns "" when credential is
// not a JWT. Never use the result for authorization decisions.
func Subject(credential string) string {
	credential = strings.TrimSpace(credential)
	if scheme, rest, ok := strings.Cut(credential, " "); ok && strings.EqualFold(scheme, "Bearer") {
		credential = strings.TrimSpace(rest)
	}

	var claims libJWT.RegisteredClaims
	if _, _, err := libJWT.NewParser().ParseUnverified(credential, &claims); err != nil {
		return ""
	}

	return claims.Subject
}
