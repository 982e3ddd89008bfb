package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// Credential returns the Authorization header as sent, or "" when it is
// absent or only whitespace.
func (r *Request) Credential() string {
	v := r.Header.Get("Authorization")
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// DecodeBody decodes a single JSON value from the body into dst.
//
// An empty body leaves dst untouched so the caller's validation reports the
// missing fields. Unknown members are ignored.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
