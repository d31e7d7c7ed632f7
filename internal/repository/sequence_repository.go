package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// SequenceRepository hands out gapless per-prefix per-day document numbers
type SequenceRepository interface {
	// Next returns the next number for the prefix on the given day. The
	// counter row is locked for the duration of the enclosing transaction,
	// so two concurrent callers cannot receive the same number.
	Next(ctx context.Context, prefix string, day time.Time) (string, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new document sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, prefix string, day time.Time) (string, error) {
	dayKey := models.SequenceDay(day)

	var seq models.DocumentSequence
	err := forUpdate(r.db.WithContext(ctx)).
		Where("prefix = ? AND day = ?", prefix, dayKey).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.DocumentSequence{Prefix: prefix, Day: dayKey, LastNumber: 0}
		if err := r.db.WithContext(ctx).Create(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	seq.LastNumber++
	if err := r.db.WithContext(ctx).Save(&seq).Error; err != nil {
		return "", err
	}
	return models.FormatDocumentNo(prefix, day, seq.LastNumber), nil
}
