package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
)

type initiateData struct {
	Secret        string   `json:"secret"`
	MFAToken      string   `json:"mfa_token"`
	RecoveryCodes []string `json:"recovery_codes"`
	OOBCode       *string  `json:"oob_code"`
}

type confirmData struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Tokens  json.RawMessage `json:"tokens"`
}

func initiate(t *testing.T, credential string) initiateData {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/initiate-enrollment", nil, credential)
	if status != http.StatusOK {
		t.Fatalf("initiate enrollment failed: status=%d body=%s", status, body)
	}

	var data initiateData
	decode(t, body, &data)

	return data
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := otp.NewTOTP(otp.Config{Issuer: "mfarelay"}).GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate totp code: %v", err)
	}

	return code
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
