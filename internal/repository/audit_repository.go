package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log data access
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	CreateBatch(ctx context.Context, entries []models.AuditLog) error
	FindBySubject(ctx context.Context, subjectKind string, subjectID uint) ([]models.AuditLog, error)
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) CreateBatch(ctx context.Context, entries []models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *auditRepository) FindBySubject(ctx context.Context, subjectKind string, subjectID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("subject_kind = ? AND subject_id = ?", subjectKind, subjectID).
		Order("recorded_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if subjectKind, ok := query.Filters["subject_kind"]; ok && subjectKind != "" {
		q = q.Where("subject_kind = ?", subjectKind)
	}
	if subjectID, ok := query.Filters["subject_id"]; ok && subjectID != "" {
		q = q.Where("subject_id = ?", subjectID)
	}
	if action, ok := query.Filters["action"]; ok && action != "" {
		q = q.Where("action = ?", action)
	}
	if actorID, ok := query.Filters["actor_id"]; ok && actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}
	if batchID, ok := query.Filters["batch_id"]; ok && batchID != "" {
		q = q.Where("batch_id = ?", batchID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("recorded_at DESC, id DESC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&entries).Error
	return entries, total, err
}
