package repository

import (
	"context"
	"errors"

	"proxyshare/internal/models"

	"gorm.io/gorm"
)

// ProxyRepository defines persistence operations for shared proxy records.
// Records have no update operation; they are created once and deleted by
// their owner.
type ProxyRepository interface {
	// List returns every record, newest upload first, with the uploader loaded.
	List(ctx context.Context) ([]models.Proxy, error)
	// GetByID returns the record with the given id, or (nil, nil) when absent.
	GetByID(ctx context.Context, id uint) (*models.Proxy, error)
	Create(ctx context.Context, proxy *models.Proxy) error
	// Delete removes the record and its validity reports in one transaction.
	Delete(ctx context.Context, id uint) error
}

type proxyRepository struct {
	db *gorm.DB
}

// NewProxyRepository returns a new ProxyRepository implementation.
func NewProxyRepository(db *gorm.DB) ProxyRepository {
	return &proxyRepository{db: db}
}

func (r *proxyRepository) List(ctx context.Context) ([]models.Proxy, error) {
	proxies := make([]models.Proxy, 0)
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Order("upload_time DESC").
		Find(&proxies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return proxies, nil
}

func (r *proxyRepository) GetByID(ctx context.Context, id uint) (*models.Proxy, error) {
	var proxy models.Proxy
	if err := r.db.WithContext(ctx).First(&proxy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &proxy, nil
}

func (r *proxyRepository) Create(ctx context.Context, proxy *models.Proxy) error {
	if err := r.db.WithContext(ctx).Create(proxy).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *proxyRepository) Delete(ctx context.Context, id uint) error {
	// The FK carries ON DELETE CASCADE in Postgres; deleting reports explicitly
	// keeps the invariant on storage engines where the pragma may be off.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proxy_id = ?", id).Delete(&models.ValidityReport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Proxy{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
