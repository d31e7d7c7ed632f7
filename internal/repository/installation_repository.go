package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// InstallationRepository defines the interface for installation order data access
type InstallationRepository interface {
	Create(ctx context.Context, order *models.InstallationOrder) error
	Update(ctx context.Context, order *models.InstallationOrder) error
	FindByID(ctx context.Context, id uint) (*models.InstallationOrder, error)
	FindByIDWithPhotos(ctx context.Context, id uint) (*models.InstallationOrder, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.InstallationOrder, error)
	CreatePhoto(ctx context.Context, photo *models.InstallationPhoto) error
	List(ctx context.Context, query *ListQuery) ([]models.InstallationOrder, int64, error)
}

type installationRepository struct {
	db *gorm.DB
}

// NewInstallationRepository creates a new installation order repository
func NewInstallationRepository(db *gorm.DB) InstallationRepository {
	return &installationRepository{db: db}
}

func (r *installationRepository) Create(ctx context.Context, order *models.InstallationOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *installationRepository) Update(ctx context.Context, order *models.InstallationOrder) error {
	return r.db.WithContext(ctx).Omit("Photos", "Party").Save(order).Error
}

func (r *installationRepository) FindByID(ctx context.Context, id uint) (*models.InstallationOrder, error) {
	var order models.InstallationOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *installationRepository) FindByIDWithPhotos(ctx context.Context, id uint) (*models.InstallationOrder, error) {
	var order models.InstallationOrder
	err := r.db.WithContext(ctx).Preload("Photos").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *installationRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.InstallationOrder, error) {
	var order models.InstallationOrder
	err := forUpdate(r.db.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *installationRepository) CreatePhoto(ctx context.Context, photo *models.InstallationPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *installationRepository) List(ctx context.Context, query *ListQuery) ([]models.InstallationOrder, int64, error) {
	var orders []models.InstallationOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&models.InstallationOrder{})
	if status, ok := query.Filters["status"]; ok && status != "" {
		q = q.Where("status = ?", status)
	}
	if partyID, ok := query.Filters["party_id"]; ok && partyID != "" {
		q = q.Where("party_id = ?", partyID)
	}
	if query.Search != "" {
		q = q.Where("document_no LIKE ?", "%"+query.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Party").
		Order("scheduled_at ASC, id ASC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&orders).Error
	return orders, total, err
}
