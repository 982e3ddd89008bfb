package entity

import "encoding/json"

// GrantTypeMFAOTP is the OAuth grant used to complete an OTP enrollment.
const GrantTypeMFAOTP = "http://auth0.com/oauth/grant-type/mfa-otp"

// AuthenticatorTypeOTP is the only authenticator type the relay associates.
const AuthenticatorTypeOTP = "otp"

// Provider member names of an association response that the relay reads.
const (
	MemberSecret        = "secret"
	MemberOOBCode       = "oob_code"
	MemberRecoveryCodes = "recovery_codes"
)

// Association is the provider's answer to an enrollment initiation.
type Association struct {
	Secret            string
	ContinuationToken string   // upstream oob_code
	RecoveryCodes     []string // nil when the provider omitted it
	// Sent keeps secret, oob_code and recovery_codes exactly as the provider
	// wrote them, empty strings and nulls included. An omitted member has no
	// entry. Nil when the association was not decoded from a provider body.
	Sent map[string]json.RawMessage
	// Extra holds every other member of the provider response, untouched.
	Extra map[string]json.RawMessage
}

// Member returns the JSON value of one of the Member* names and whether the
// provider sent it. Without Sent the typed field is used and a zero value
// counts as omitted.
func (a *Association) Member(name string) (json.RawMessage, bool) {
	if a.Sent != nil {
		raw, ok := a.Sent[name]
		return raw, ok
	}

	var v any
	switch name {
	case MemberSecret:
		if a.Secret == "" {
			return nil, false
		}
		v = a.Secret
	case MemberOOBCode:
		if a.ContinuationToken == "" {
			return nil, false
		}
		v = a.ContinuationToken
	case MemberRecoveryCodes:
		if a.RecoveryCodes == nil {
			return nil, false
		}
		v = a.RecoveryCodes
	default:
		return nil, false
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Confirmation is the caller's proof that the authenticator was set up.
type Confirmation struct {
	OTP               string
	ContinuationToken string
}

// Grant carries the provider token response verbatim.
type Grant struct {
	Tokens json.RawMessage
}
