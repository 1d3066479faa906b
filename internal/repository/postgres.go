package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// PostgresStores bundles the postgres-backed store implementations over a
// shared connection. It is the swap-in persistent backend; the service
// layer's locking is unchanged, so the consistency model stays
// single-instance.
type PostgresStores struct {
	Conn       *gorm.DB
	Properties *PostgresPropertyStore
	Purchases  *PostgresPurchaseStore
	KYC        *PostgresKYCStore
}

func NewPostgresStores(user, password, dbname, host string, port int, appLogger *logger.Logger) (*PostgresStores, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Property{}, &models.PurchaseRequest{}, &models.KYCRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL!")
	return &PostgresStores{
		Conn:       db,
		Properties: &PostgresPropertyStore{db: db},
		Purchases:  &PostgresPurchaseStore{db: db},
		KYC:        &PostgresKYCStore{db: db},
	}, nil
}

func (s *PostgresStores) Close() error {
	sqlDB, err := s.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

type PostgresPropertyStore struct {
	db *gorm.DB
}

func (s *PostgresPropertyStore) Create(ctx context.Context, property *models.Property) error {
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(property).Error; err != nil {
		return fmt.Errorf("failed to create property: %s", err)
	}
	return nil
}

func (s *PostgresPropertyStore) Get(ctx context.Context, id int64) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("property %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %s", err)
	}
	return &property, nil
}

func (s *PostgresPropertyStore) List(ctx context.Context) ([]*models.Property, error) {
	var properties []*models.Property
	if err := s.db.WithContext(ctx).Order("id").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %s", err)
	}
	return properties, nil
}

// Update persists every field the service layer mutates: the descriptive
// and pricing edits from the inventory update path and the supply counters
// from the commit path. ID, TotalTokens and CreatedAt never change after
// creation.
func (s *PostgresPropertyStore) Update(ctx context.Context, property *models.Property) error {
	result := s.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", property.ID).
		Updates(map[string]interface{}{
			"name":             property.Name,
			"address":          property.Address,
			"description":      property.Description,
			"metadata_uri":     property.MetadataURI,
			"token_price":      property.TokenPrice,
			"tokens_available": property.TokensAvailable,
			"status":           property.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update property: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("property %d: %w", property.ID, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresPropertyStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Property{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete property: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("property %d: %w", id, models.ErrNotFound)
	}
	return nil
}

type PostgresPurchaseStore struct {
	db *gorm.DB
}

func (s *PostgresPurchaseStore) Create(ctx context.Context, purchase *models.PurchaseRequest) error {
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %s", err)
	}
	return nil
}

func (s *PostgresPurchaseStore) Get(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	var purchase models.PurchaseRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get purchase: %s", err)
	}
	return &purchase, nil
}

func (s *PostgresPurchaseStore) List(ctx context.Context) ([]*models.PurchaseRequest, error) {
	var purchases []*models.PurchaseRequest
	if err := s.db.WithContext(ctx).Order("id").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %s", err)
	}
	return purchases, nil
}

func (s *PostgresPurchaseStore) ListByStatus(ctx context.Context, status models.PurchaseStatus) ([]*models.PurchaseRequest, error) {
	var purchases []*models.PurchaseRequest
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases by status: %s", err)
	}
	return purchases, nil
}

func (s *PostgresPurchaseStore) ListByWallet(ctx context.Context, wallet string, status models.PurchaseStatus) ([]*models.PurchaseRequest, error) {
	var purchases []*models.PurchaseRequest
	if err := s.db.WithContext(ctx).
		Where("lower(wallet) = ? AND status = ?", validation.NormalizeAddress(wallet), status).
		Order("id").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases by wallet: %s", err)
	}
	return purchases, nil
}

func (s *PostgresPurchaseStore) PendingTokens(ctx context.Context, propertyID int64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.PurchaseRequest{}).
		Where("property_id = ? AND status = ?", propertyID, models.PurchasePending).
		Select("COALESCE(SUM(tokens), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum pending tokens: %s", err)
	}
	return total, nil
}

func (s *PostgresPurchaseStore) MarkMinted(ctx context.Context, id int64, txHash string, mintedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, models.PurchasePending).
		Updates(map[string]interface{}{
			"status":    models.PurchaseMinted,
			"tx_hash":   txHash,
			"minted_at": mintedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark purchase minted: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		var purchase models.PurchaseRequest
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&purchase).Error; err != nil {
			return fmt.Errorf("purchase %d: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("purchase %d is %s: %w", id, purchase.Status, models.ErrStateConflict)
	}
	return nil
}

type PostgresKYCStore struct {
	db *gorm.DB
}

func (s *PostgresKYCStore) Put(ctx context.Context, record *models.KYCRecord) error {
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save KYC record: %s", err)
	}
	return nil
}

func (s *PostgresKYCStore) Get(ctx context.Context, wallet string) (*models.KYCRecord, error) {
	var record models.KYCRecord
	if err := s.db.WithContext(ctx).Where("wallet = ?", wallet).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("KYC record for %s: %w", wallet, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get KYC record: %s", err)
	}
	return &record, nil
}

func (s *PostgresKYCStore) List(ctx context.Context) ([]*models.KYCRecord, error) {
	var records []*models.KYCRecord
	if err := s.db.WithContext(ctx).Order("wallet").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list KYC records: %s", err)
	}
	return records, nil
}

func (s *PostgresKYCStore) ListByStatus(ctx context.Context, status models.KYCStatus) ([]*models.KYCRecord, error) {
	var records []*models.KYCRecord
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("wallet").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list KYC records by status: %s", err)
	}
	return records, nil
}
