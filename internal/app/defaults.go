package app

// defaults are the lowest priority configuration source. Environment
// variables override them, e.g. AUTH0_DOMAIN for auth0.domain.
var defaults = map[string]any{
	"port":     3000,
	"app.host": "0.0.0.0",

	"app.server.cors":                        "*",
	"app.server.read_timeout_seconds":        10,
	"app.server.read_header_timeout_seconds": 5,
	"app.server.write_timeout_seconds":       15,
	"app.server.idle_timeout_seconds":        60,
	"app.server.shutdown_timeout_seconds":    10,
	"app.server.max_goroutine":               16,
	"app.maintenance.endpoints":              "",

	"auth0.domain":          "",
	"auth0.client_id":       "",
	"auth0.client_secret":   "",
	"auth0.timeout_seconds": 10,

	"provider.driver":                         "auth0",
	"provider.sandbox.ttl_seconds":            300,
	"provider.sandbox.token_ttl_seconds":      3600,
	"provider.sandbox.signing_key":            "",
	"provider.sandbox.totp_issuer":            "mfarelay",
	"provider.sandbox.recovery_code_count":    10,
	"provider.sandbox.sweep_interval_seconds": 60,

	"instrument.enabled":                 false,
	"instrument.service_name":            "mfarelay",
	"instrument.service_version":         "dev",
	"instrument.env":                     "local",
	"instrument.otlp_endpoint":           "localhost:4317",
	"instrument.otlp_secure":             false,
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 60,
	"instrument.log_level":               "info",
	"instrument.log_mask_fields":         "authorization,client_secret,otp,mfa_token,secret," +
		"recovery_codes,access_token,id_token,refresh_token,oob_code",
}
