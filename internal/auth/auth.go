package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rahulbansal29/Landchain/internal/metrics"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// challengeTemplate is the exact text wallets sign. Any byte of deviation
// fails verification.
const challengeTemplate = "LandChain login\nWallet: %s\nNonce: %s\nIssued At: %s"

// TokenIssuer turns a verified wallet into a bearer credential.
type TokenIssuer interface {
	Issue(wallet, role string) (string, error)
}

// Service implements challenge-response wallet authentication: a random
// nonce is issued per wallet, the wallet signs the canonical challenge
// message, and a valid signature is exchanged for a session token.
type Service struct {
	logger       *logger.Logger
	challenges   models.ChallengeRepository
	tokens       TokenIssuer
	adminWallets map[string]struct{}
	ttl          time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

func NewService(challenges models.ChallengeRepository, tokens TokenIssuer, adminWallets []string, ttl time.Duration, logger *logger.Logger) *Service {
	admins := make(map[string]struct{}, len(adminWallets))
	for _, wallet := range adminWallets {
		admins[validation.NormalizeAddress(wallet)] = struct{}{}
	}
	return &Service{
		logger:       logger,
		challenges:   challenges,
		tokens:       tokens,
		adminWallets: admins,
		ttl:          ttl,
		now:          time.Now,
	}
}

// IssueNonce creates a fresh challenge for the wallet, invalidating any
// prior one.
func (s *Service) IssueNonce(ctx context.Context, wallet string) (*models.AuthChallenge, string, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	challenge := &models.AuthChallenge{
		Wallet:   canonical,
		Nonce:    hex.EncodeToString(buf),
		IssuedAt: s.now(),
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return nil, "", err
	}
	return challenge, ChallengeMessage(canonical, challenge.Nonce, challenge.IssuedAt), nil
}

// VerifySignature checks the signature against the wallet's outstanding
// challenge and exchanges it for a session credential. The challenge is
// consumed either way: success or signature mismatch both discard it.
func (s *Service) VerifySignature(ctx context.Context, wallet, signature string) (*models.Credential, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	challenge, err := s.challenges.Get(ctx, canonical)
	if err != nil {
		metrics.AuthVerifications.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("no outstanding challenge for %s: %w", canonical, models.ErrNoChallenge)
	}
	if challenge.Expired(s.now(), s.ttl) {
		_ = s.challenges.Delete(ctx, canonical)
		metrics.AuthVerifications.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("challenge for %s expired: %w", canonical, models.ErrChallengeExpired)
	}

	message := ChallengeMessage(challenge.Wallet, challenge.Nonce, challenge.IssuedAt)
	signer, err := recoverSigner(message, signature)
	if err != nil || !validation.SameAddress(signer, canonical) {
		_ = s.challenges.Delete(ctx, canonical)
		metrics.AuthVerifications.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("signature does not recover %s: %w", canonical, models.ErrSignatureMismatch)
	}

	if err := s.challenges.Delete(ctx, canonical); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if _, ok := s.adminWallets[validation.NormalizeAddress(canonical)]; ok {
		role = models.RoleAdmin
	}
	token, err := s.tokens.Issue(canonical, role)
	if err != nil {
		return nil, err
	}

	metrics.AuthVerifications.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info("Wallet authenticated ", "wallet ", canonical, " role ", role)
	return &models.Credential{Token: token, Wallet: canonical, Role: role}, nil
}

// PurgeExpired drops challenges whose TTL has elapsed. Runs on a
// schedule; expiry is also enforced inline at verification time.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	return s.challenges.DeleteIssuedBefore(ctx, s.now().Add(-s.ttl))
}

// ChallengeMessage renders the canonical text a wallet must sign.
func ChallengeMessage(wallet, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(challengeTemplate, wallet, nonce, issuedAt.UTC().Format(time.RFC3339))
}

// recoverSigner recovers the signing address from an EIP-191 personal
// signature over the message.
func recoverSigner(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("signature is not hex: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
