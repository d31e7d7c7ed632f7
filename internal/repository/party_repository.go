package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// PartyRepository defines the interface for customer/supplier data access
type PartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	Update(ctx context.Context, party *models.Party) error
	FindByID(ctx context.Context, id uint) (*models.Party, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Party, error)
	FindAllIDs(ctx context.Context) ([]uint, error)
	List(ctx context.Context, query *ListQuery) ([]models.Party, int64, error)
}

type partyRepository struct {
	db *gorm.DB
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, party *models.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *partyRepository) Update(ctx context.Context, party *models.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

func (r *partyRepository) FindByID(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).First(&party, id).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	err := forUpdate(r.db.WithContext(ctx)).First(&party, id).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) FindAllIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Party{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *partyRepository) List(ctx context.Context, query *ListQuery) ([]models.Party, int64, error) {
	var parties []models.Party
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Party{})
	if partyType, ok := query.Filters["party_type"]; ok && partyType != "" {
		q = q.Where("party_type = ?", partyType)
	}
	if query.Search != "" {
		q = q.Where("name LIKE ?", "%"+query.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("name ASC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&parties).Error
	return parties, total, err
}
