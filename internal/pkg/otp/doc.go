// Package otp generates and validates time-based one-time passwords (TOTP).
//
// It backs the sandbox identity provider, which has to play the
// authenticator-app side of an OTP enrollment without a real tenant.
package otp
