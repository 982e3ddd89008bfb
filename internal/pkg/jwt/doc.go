// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// It includes:
//   - An HS256 signer used by the sandbox provider to mint tokens.
//   - Subject, which reads the "sub" claim of a bearer credential without
//     verifying it, for log attribution only.
package jwt
