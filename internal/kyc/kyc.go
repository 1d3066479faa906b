package kyc

import (
	"context"
	"fmt"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// Gate tracks the local KYC approval workflow and fronts the on-chain
// registry. The local record is a workflow cache only; callers gating
// money-moving actions must use IsApproved, which always asks the live
// oracle.
type Gate struct {
	logger   *logger.Logger
	records  models.KYCRepository
	oracle   models.ApprovalOracle
	notifier models.Notifier
}

func NewGate(records models.KYCRepository, oracle models.ApprovalOracle, notifier models.Notifier, logger *logger.Logger) *Gate {
	return &Gate{
		logger:   logger,
		records:  records,
		oracle:   oracle,
		notifier: notifier,
	}
}

// Submit creates or overwrites the wallet's record as PENDING.
// Resubmission resets the workflow and replaces the metadata.
func (g *Gate) Submit(ctx context.Context, wallet string, metadata map[string]string) (*models.KYCRecord, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	if err := validateMetadata(metadata); err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	record := &models.KYCRecord{
		Wallet:    canonical,
		Status:    models.KYCPending,
		Metadata:  metadata,
		UpdatedAt: time.Now(),
	}
	if err := g.records.Put(ctx, record); err != nil {
		return nil, err
	}
	g.logger.Info("KYC submitted ", "wallet ", canonical)
	return record, nil
}

// Approve marks the wallet approved on the registry and only then updates
// the local cache, so the cache never shows a state the oracle has not
// confirmed.
func (g *Gate) Approve(ctx context.Context, wallet string) (string, error) {
	return g.settle(ctx, wallet, models.KYCApproved, models.EventKYCApproved, g.oracle.Approve)
}

// Revoke is the inverse of Approve with the same settlement-first rule.
func (g *Gate) Revoke(ctx context.Context, wallet string) (string, error) {
	return g.settle(ctx, wallet, models.KYCRevoked, models.EventKYCRevoked, g.oracle.Revoke)
}

func (g *Gate) settle(
	ctx context.Context,
	wallet string,
	status models.KYCStatus,
	eventType models.EventType,
	call func(context.Context, string) (string, error),
) (string, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	txHash, err := call(ctx, canonical)
	if err != nil {
		return "", err
	}

	metadata := map[string]string{}
	if existing, err := g.records.Get(ctx, canonical); err == nil {
		metadata = existing.Metadata
	}
	record := &models.KYCRecord{
		Wallet:    canonical,
		Status:    status,
		Metadata:  metadata,
		UpdatedAt: time.Now(),
	}
	if err := g.records.Put(ctx, record); err != nil {
		// The oracle transition settled; only the cache write failed.
		// Status will report the disagreement until a retry heals it.
		g.logger.Error("Failed to update local KYC cache after settlement ", "wallet ", canonical, " error ", err)
		return txHash, err
	}

	g.logger.Info("KYC status settled ", "wallet ", canonical, " status ", status, " tx ", txHash)
	if g.notifier != nil {
		g.notifier.Notify(&models.Event{Type: eventType, Wallet: canonical, TxHash: txHash})
	}
	return txHash, nil
}

// Status reports the live oracle answer next to the local workflow state.
// The two may disagree transiently.
func (g *Gate) Status(ctx context.Context, wallet string) (*models.KYCStatusView, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	onChain, err := g.oracle.IsApproved(ctx, canonical)
	if err != nil {
		return nil, err
	}

	view := &models.KYCStatusView{
		Wallet:          canonical,
		OnChainApproved: onChain,
		LocalStatus:     models.KYCNone,
	}
	if record, err := g.records.Get(ctx, canonical); err == nil {
		view.LocalStatus = record.Status
		updatedAt := record.UpdatedAt
		view.UpdatedAt = &updatedAt
	}
	return view, nil
}

// IsApproved is the live gate consulted by purchase and mint operations.
func (g *Gate) IsApproved(ctx context.Context, wallet string) (bool, error) {
	return g.oracle.IsApproved(ctx, wallet)
}

// ListPending returns wallets awaiting admin review.
func (g *Gate) ListPending(ctx context.Context) ([]*models.KYCRecord, error) {
	return g.records.ListByStatus(ctx, models.KYCPending)
}

// Stats counts local records per workflow state.
func (g *Gate) Stats(ctx context.Context) (map[models.KYCStatus]int, int, error) {
	records, err := g.records.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[models.KYCStatus]int)
	for _, record := range records {
		counts[record.Status]++
	}
	return counts, len(records), nil
}

func validateMetadata(metadata map[string]string) error {
	if len(metadata) > models.MaxKYCMetadataKeys {
		return fmt.Errorf("metadata exceeds %d keys: %w", models.MaxKYCMetadataKeys, models.ErrValidation)
	}
	for key, value := range metadata {
		if len(value) > models.MaxKYCMetadataValueLen {
			return fmt.Errorf("metadata value for %q exceeds %d bytes: %w", key, models.MaxKYCMetadataValueLen, models.ErrValidation)
		}
	}
	return nil
}
