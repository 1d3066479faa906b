package models

import "time"

// Role carried by a verified session.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthChallenge is a single-use nonce issued to a wallet. Only the most
// recent challenge per wallet is valid; it is consumed on the first
// successful verification and discarded on any failed one.
type AuthChallenge struct {
	// Wallet is the canonical checksummed address the challenge was
	// issued to.
	Wallet string `json:"wallet"`
	// Nonce is a 128-bit random value, hex encoded.
	Nonce string `json:"nonce"`
	// IssuedAt starts the TTL window.
	IssuedAt time.Time `json:"issuedAt"`
}

// Expired reports whether the challenge is older than ttl at the given
// instant.
func (c *AuthChallenge) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.IssuedAt) > ttl
}

// Credential is the session issued after a successful signature
// verification.
type Credential struct {
	Token  string `json:"token"`
	Wallet string `json:"wallet"`
	Role   string `json:"role"`
}
