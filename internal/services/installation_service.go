package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/statemachine"
	"github.com/mobilia/erp-api/internal/storage"
	"gorm.io/gorm"
)

// CreateInstallationInput carries the fields for a new installation order
type CreateInstallationInput struct {
	PartyID      uint    `json:"party_id"`
	SalesOrderID *uint   `json:"sales_order_id"`
	Address      string  `json:"address"`
	Note         *string `json:"note"`
}

type InstallationService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
	storage  *storage.LocalStorage
}

func NewInstallationService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService, storage *storage.LocalStorage) *InstallationService {
	return &InstallationService{db: db, repos: repos, auditSvc: auditSvc, storage: storage}
}

// Create records a new draft installation order
func (s *InstallationService) Create(ctx context.Context, input CreateInstallationInput, actor Actor) (*models.InstallationOrder, error) {
	if input.Address == "" {
		return nil, fmt.Errorf("address is required: %w", ErrValidation)
	}

	rec := s.auditSvc.Begin(actor)
	var order *models.InstallationOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		if _, err := r.Party.FindByID(ctx, input.PartyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if input.SalesOrderID != nil {
			if _, err := r.SalesOrder.FindByID(ctx, *input.SalesOrderID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		}

		orderNo, err := nextInstallationNo(ctx, r.Sequence, time.Now())
		if err != nil {
			return err
		}

		order = &models.InstallationOrder{
			OrderNo:      orderNo,
			SalesOrderID: input.SalesOrderID,
			PartyID:      input.PartyID,
			Address:      input.Address,
			Status:       models.InstallationStatusDraft,
			Note:         input.Note,
		}
		if err := r.Installation.Create(ctx, order); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInstallationOrder, ID: order.ID},
			models.AuditActionCreated,
			nil,
			map[string]interface{}{"order_no": order.OrderNo, "status": order.Status})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return order, nil
}

// transition runs one FSM event against a locked installation order and
// persists the result. The mutate callback adjusts timestamps and the SLA
// clock after the status change.
func (s *InstallationService) transition(ctx context.Context, id uint, actor Actor, action string,
	event func(*statemachine.InstallationFSM, context.Context) error,
	mutate func(*models.InstallationOrder, time.Time)) (*models.InstallationOrder, error) {

	rec := s.auditSvc.Begin(actor)
	var order *models.InstallationOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		o, err := r.Installation.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		before := o.Status

		machine := statemachine.NewInstallationFSM(o)
		if err := event(machine, ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidState)
		}

		now := time.Now()
		if mutate != nil {
			mutate(o, now)
		}

		if err := r.Installation.Update(ctx, o); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInstallationOrder, ID: o.ID},
			action,
			map[string]interface{}{"status": before},
			map[string]interface{}{"status": o.Status})

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return order, nil
}

// Schedule books (or re-books) the visit. The SLA clock starts on the first
// schedule and resumes if it was paused by a no-show or parts hold.
func (s *InstallationService) Schedule(ctx context.Context, id uint, at time.Time, actor Actor) (*models.InstallationOrder, error) {
	return s.transition(ctx, id, actor, models.AuditActionUpdated,
		(*statemachine.InstallationFSM).Schedule,
		func(o *models.InstallationOrder, now time.Time) {
			o.ScheduledAt = &at
			if o.SLAStartedAt == nil {
				o.SLAStartedAt = &now
			}
			o.ResumeSLA(now)
		})
}

// Start begins the on-site work
func (s *InstallationService) Start(ctx context.Context, id uint, actor Actor) (*models.InstallationOrder, error) {
	return s.transition(ctx, id, actor, models.AuditActionUpdated,
		(*statemachine.InstallationFSM).Start, nil)
}

// MarkNoShow records that nobody was home. Pauses the SLA clock.
func (s *InstallationService) MarkNoShow(ctx context.Context, id uint, actor Actor) (*models.InstallationOrder, error) {
	return s.transition(ctx, id, actor, models.AuditActionUpdated,
		(*statemachine.InstallationFSM).MarkNoShow,
		func(o *models.InstallationOrder, now time.Time) {
			o.PauseSLA(now)
		})
}

// HoldForParts puts the job on hold until missing parts arrive. Pauses the
// SLA clock.
func (s *InstallationService) HoldForParts(ctx context.Context, id uint, actor Actor) (*models.InstallationOrder, error) {
	return s.transition(ctx, id, actor, models.AuditActionUpdated,
		(*statemachine.InstallationFSM).HoldForParts,
		func(o *models.InstallationOrder, now time.Time) {
			o.PauseSLA(now)
		})
}

// Complete finishes the job. Requires at least one "after" photo on file.
func (s *InstallationService) Complete(ctx context.Context, id uint, actor Actor) (*models.InstallationOrder, error) {
	rec := s.auditSvc.Begin(actor)
	var order *models.InstallationOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		o, err := r.Installation.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		before := o.Status

		loaded, err := r.Installation.FindByIDWithPhotos(ctx, id)
		if err != nil {
			return err
		}
		o.Photos = loaded.Photos
		if !o.HasAfterPhoto() {
			return fmt.Errorf("installation %s has no after photo: %w", o.OrderNo, ErrPrecondition)
		}

		machine := statemachine.NewInstallationFSM(o)
		if err := machine.Complete(ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidState)
		}

		now := time.Now()
		o.CompletedAt = &now
		if err := r.Installation.Update(ctx, o); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInstallationOrder, ID: o.ID},
			models.AuditActionApproved,
			map[string]interface{}{"status": before},
			map[string]interface{}{
				"status":      o.Status,
				"sla_elapsed": o.SLAElapsed(now).String(),
			})

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return order, nil
}

// AddPhoto stores an uploaded photo and attaches it to the order
func (s *InstallationService) AddPhoto(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader, tag string, actor Actor) (*models.InstallationPhoto, error) {
	if tag != models.PhotoTagBefore && tag != models.PhotoTagAfter {
		return nil, fmt.Errorf("unknown photo tag %q: %w", tag, ErrValidation)
	}

	order, err := s.repos.Installation.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status == models.InstallationStatusCompleted {
		return nil, fmt.Errorf("installation %s is completed: %w", order.OrderNo, ErrInvalidState)
	}

	path, err := s.storage.Upload(file, header, "installations")
	if err != nil {
		return nil, err
	}

	photo := &models.InstallationPhoto{
		InstallationOrderID: order.ID,
		Path:                path,
		Tag:                 tag,
		UploadedBy:          actor.ID,
	}
	if err := s.repos.Installation.CreatePhoto(ctx, photo); err != nil {
		s.storage.Delete(path)
		return nil, err
	}
	return photo, nil
}

func (s *InstallationService) FindByID(ctx context.Context, id uint) (*models.InstallationOrder, error) {
	order, err := s.repos.Installation.FindByIDWithPhotos(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *InstallationService) List(ctx context.Context, query *repository.ListQuery) ([]models.InstallationOrder, int64, error) {
	return s.repos.Installation.List(ctx, query)
}
