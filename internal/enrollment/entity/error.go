package entity

import (
	"encoding/json"
	"fmt"

	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
)

// Provider error code returned when an OTP or continuation token is rejected.
const ErrorCodeInvalidGrant = "invalid_grant"

const (
	OpAssociate   = "associate"
	OpExchangeOTP = "exchange_otp"
)

var (
	ErrMissingCredential   = goerror.NewBusiness("missing user access token", goerror.CodeUnauthorized)
	ErrInvalidOrExpiredOTP = goerror.NewBusiness("the OTP code is invalid or expired", goerror.CodeInvalidInput)
)

const (
	MsgMissingParameters = "missing parameters: otp or mfa_token"
	MsgInitiateFailed    = "failed to initiate enrollment"
	MsgConfirmFailed     = "failed to confirm enrollment"
)

// UpstreamError describes a failed call to the identity provider.
type UpstreamError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Code       string // provider "error" member, if any
	Body       []byte // raw provider response body, if any
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	case e.Code != "":
		return fmt.Sprintf("upstream %s: status %d: %s", e.Op, e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("upstream %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details returns what the provider reported, suitable for relaying to the
// caller: decoded JSON when the body is JSON, the raw text otherwise, or the
// transport error message when no body was received.
func (e *UpstreamError) Details() any {
	if len(e.Body) > 0 {
		if json.Valid(e.Body) {
			return json.RawMessage(e.Body)
		}
		return string(e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return nil
}
