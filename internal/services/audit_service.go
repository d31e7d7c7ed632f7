package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mobilia/erp-api/internal/jobs"
	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/pkg/logger"
	"gorm.io/gorm"
)

// Actor identifies who performed an operation, for audit attribution
type Actor struct {
	ID        uint
	IP        string
	UserAgent string
}

// AuditService writes append-only audit entries. Entries are accumulated in
// an AuditRecorder during a business transaction and written only after that
// transaction has committed, so a rolled-back operation leaves no audit
// trace. The repository is bound to the base connection, never to the
// business transaction.
type AuditService struct {
	repo   repository.AuditRepository
	refs   *models.ReferenceRegistry
	worker *jobs.Worker
}

// NewAuditService creates a new audit service. A nil worker makes Commit
// write synchronously, which tests rely on.
func NewAuditService(repo repository.AuditRepository, refs *models.ReferenceRegistry, worker *jobs.Worker) *AuditService {
	return &AuditService{repo: repo, refs: refs, worker: worker}
}

// AuditRecorder buffers the audit entries of one business operation. All
// entries recorded through the same recorder share a batch id.
type AuditRecorder struct {
	batchID string
	actor   Actor
	entries []models.AuditLog
}

// Begin starts a recorder for one operation performed by the given actor
func (s *AuditService) Begin(actor Actor) *AuditRecorder {
	return &AuditRecorder{
		batchID: uuid.New().String(),
		actor:   actor,
	}
}

// Record buffers one audit entry. Nothing is written until Commit.
func (r *AuditRecorder) Record(subject models.Reference, action string, before, after map[string]interface{}) {
	r.entries = append(r.entries, models.AuditLog{
		BatchID:     r.batchID,
		SubjectKind: subject.Kind,
		SubjectID:   subject.ID,
		Action:      action,
		ActorID:     r.actor.ID,
		BeforeState: models.Snapshot(before),
		AfterState:  models.Snapshot(after),
		IPAddress:   r.actor.IP,
		UserAgent:   r.actor.UserAgent,
		RecordedAt:  time.Now(),
	})
}

// RecordWithMeta buffers one audit entry with extra metadata
func (r *AuditRecorder) RecordWithMeta(subject models.Reference, action string, before, after, meta map[string]interface{}) {
	r.Record(subject, action, before, after)
	r.entries[len(r.entries)-1].Metadata = models.Snapshot(meta)
}

// BatchID returns the batch id shared by all entries of this recorder
func (r *AuditRecorder) BatchID() string {
	return r.batchID
}

// Commit writes the buffered entries. Call it only after the business
// transaction has committed. Write failures are logged, never propagated:
// the business operation already succeeded.
func (s *AuditService) Commit(ctx context.Context, rec *AuditRecorder) {
	if rec == nil || len(rec.entries) == 0 {
		return
	}
	entries := rec.entries
	rec.entries = nil

	if s.worker != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			if err := s.repo.CreateBatch(ctx, entries); err != nil {
				logger.Error(fmt.Sprintf("[Audit] Failed to write batch %s: %v", rec.batchID, err))
			}
			return nil
		})
		return
	}

	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		logger.Error(fmt.Sprintf("[Audit] Failed to write batch %s: %v", rec.batchID, err))
	}
}

// FindBySubject returns the full audit trail of one document, oldest first
func (s *AuditService) FindBySubject(ctx context.Context, subjectKind string, subjectID uint) ([]models.AuditLog, error) {
	return s.repo.FindBySubject(ctx, subjectKind, subjectID)
}

// Trail resolves the subject through the reference registry and returns it
// together with its audit history, oldest entry first. An unknown subject
// kind is a validation error; a subject that no longer loads is not found.
func (s *AuditService) Trail(ctx context.Context, ref models.Reference) (interface{}, []models.AuditLog, error) {
	subject, err := s.refs.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	entries, err := s.repo.FindBySubject(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	return subject, entries, nil
}

// List retrieves audit entries with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
