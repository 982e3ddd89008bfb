// Package sandbox provides an in-process identity provider that speaks the
// same contract as the Auth0 client. It is meant for local development and
// end-to-end tests without a tenant.
package sandbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/shandysiswandi/mfarelay/internal/pkg/jwt"
	"github.com/shandysiswandi/mfarelay/internal/pkg/mfa"
	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
	"github.com/shandysiswandi/mfarelay/internal/pkg/uid"
)

// DefaultSubject names the TOTP account when the credential is not a JWT.
const DefaultSubject = "sandbox-user"

const defaultTTL = 5 * time.Minute

type pending struct {
	subject   string
	secret    string
	expiresAt time.Time
}

type Dependency struct {
	TOTP         otp.OTP
	RecoveryCode mfa.RecoveryCodeGenerator
	UUID         uid.StringID
	Clock        clock.Clocker
	Signer       *jwt.Signer
	// TTL bounds how long an association can be confirmed.
	TTL time.Duration
}

// Provider keeps pending enrollments in memory until they are confirmed or expire.
type Provider struct {
	totp     otp.OTP
	recovery mfa.RecoveryCodeGenerator
	uuid     uid.StringID
	clock    clock.Clocker
	signer   *jwt.Signer
	ttl      time.Duration

	mu      sync.Mutex
	pending map[string]pending
}

func New(dep Dependency) *Provider {
	ttl := dep.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Provider{
		totp:     dep.TOTP,
		recovery: dep.RecoveryCode,
		uuid:     dep.UUID,
		clock:    dep.Clock,
		signer:   dep.Signer,
		ttl:      ttl,
		pending:  make(map[string]pending),
	}
}

func (p *Provider) Associate(ctx context.Context, credential string) (*entity.Association, error) {
	subject := jwt.Subject(credential)
	if subject == "" {
		subject = DefaultSubject
	}

	secret, uri, err := p.totp.Generate(subject)
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, Err: err}
	}

	codes, err := p.recovery.Generate()
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, Err: err}
	}

	token := p.uuid.Generate()
	now := p.clock.Now()

	p.mu.Lock()
	p.sweep(now)
	p.pending[token] = pending{subject: subject, secret: secret, expiresAt: now.Add(p.ttl)}
	p.mu.Unlock()

	slog.DebugContext(ctx, "sandbox enrollment started", "subject", subject)

	return &entity.Association{
		Secret:            secret,
		ContinuationToken: token,
		RecoveryCodes:     codes,
		Extra: map[string]json.RawMessage{
			"authenticator_type": rawString(entity.AuthenticatorTypeOTP),
			"barcode_uri":        rawString(uri),
		},
	}, nil
}

func (p *Provider) ExchangeOTP(ctx context.Context, in entity.Confirmation) (*entity.Grant, error) {
	now := p.clock.Now()

	p.mu.Lock()
	p.sweep(now)
	enrollment, found := p.pending[in.ContinuationToken]
	valid := found && p.totp.Validate(in.OTP, enrollment.secret, now)
	if valid {
		delete(p.pending, in.ContinuationToken)
	}
	p.mu.Unlock()

	if !found {
		return nil, invalidGrant("Malformed mfa_token")
	}
	if !valid {
		return nil, invalidGrant("Invalid otp_code.")
	}

	tokens, err := p.issueTokens(enrollment.subject)
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpExchangeOTP, Err: err}
	}

	slog.DebugContext(ctx, "sandbox enrollment confirmed", "subject", enrollment.subject)

	return &entity.Grant{Tokens: tokens}, nil
}

// Pending reports how many enrollments are waiting for confirmation.
func (p *Provider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep(p.clock.Now())
	return len(p.pending)
}

// RunJanitor drops expired enrollments every interval until ctx is done, so
// abandoned associations do not accumulate between calls.
func (p *Provider) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = p.ttl
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := p.Pending(); n > 0 {
				slog.DebugContext(ctx, "sandbox enrollments pending", "count", n)
			}
		}
	}
}

// sweep drops expired enrollments. The caller must hold p.mu.
func (p *Provider) sweep(now time.Time) {
	for token, e := range p.pending {
		if !now.Before(e.expiresAt) {
			delete(p.pending, token)
		}
	}
}

func (p *Provider) issueTokens(subject string) (json.RawMessage, error) {
	accessToken, err := p.signer.Sign(subject, map[string]any{"scope": "enroll"})
	if err != nil {
		return nil, err
	}

	idToken, err := p.signer.Sign(subject, map[string]any{"amr": []string{"mfa", "otp"}})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{
		"access_token": accessToken,
		"id_token":     idToken,
		"token_type":   "Bearer",
		"expires_in":   int(p.signer.TTL().Seconds()),
	})
}

func invalidGrant(description string) error {
	//nolint:errcheck,errchkjson // static map of strings
	body, _ := json.Marshal(map[string]string{
		"error":             entity.ErrorCodeInvalidGrant,
		"error_description": description,
	})

	return &entity.UpstreamError{
		Op:         entity.OpExchangeOTP,
		StatusCode: http.StatusForbidden,
		Code:       entity.ErrorCodeInvalidGrant,
		Body:       body,
	}
}

func rawString(s string) json.RawMessage {
	//nolint:errcheck,errchkjson // strings always marshal
	b, _ := json.Marshal(s)
	return b
}
