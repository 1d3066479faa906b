package models

import "errors"

// Error taxonomy shared across services. Services wrap these with context
// via %w; the HTTP layer maps them to status codes with errors.Is and never
// exposes internal detail beyond the wrapped message.
var (
	ErrValidation      = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrStateConflict   = errors.New("conflicting lifecycle state")
	ErrSupplyExhausted = errors.New("insufficient token supply")
	ErrSettlement      = errors.New("settlement failed")
)

// Auth protocol errors
var (
	ErrNoChallenge       = errors.New("no active challenge")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrKYCNotApproved    = errors.New("KYC not approved")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)
