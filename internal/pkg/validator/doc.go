// Package validator wraps go-playground/validator v10 behind a small
// interface.
//
// Failures come back as V10ValidationError keyed by the json wire name so the
// router can render them as the "fields" member of an error body.
package validator
