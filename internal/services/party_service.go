package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/pkg/logger"
	"gorm.io/gorm"
)

// CreatePartyInput carries the fields for a new customer or supplier
type CreatePartyInput struct {
	PartyType string  `json:"party_type"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	TaxID     *string `json:"tax_id"`
}

type PartyService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewPartyService(db *gorm.DB, repos *repository.Repositories) *PartyService {
	return &PartyService{db: db, repos: repos}
}

func (s *PartyService) Create(ctx context.Context, input CreatePartyInput) (*models.Party, error) {
	if input.PartyType != models.PartyTypeCustomer && input.PartyType != models.PartyTypeSupplier {
		return nil, fmt.Errorf("unknown party type %q: %w", input.PartyType, ErrValidation)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}

	party := &models.Party{
		PartyType: input.PartyType,
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		TaxID:     input.TaxID,
	}
	if err := s.repos.Party.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *PartyService) FindByID(ctx context.Context, id uint) (*models.Party, error) {
	party, err := s.repos.Party.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return party, nil
}

func (s *PartyService) List(ctx context.Context, query *repository.ListQuery) ([]models.Party, int64, error) {
	return s.repos.Party.List(ctx, query)
}

// RecalculateBalance rebuilds one party's ledger state from scratch: every
// non-draft invoice is recomputed from its posted allocations, then the
// outstanding balance from the invoices. Idempotent.
func (s *PartyService) RecalculateBalance(ctx context.Context, partyID uint) (*models.Party, error) {
	var party *models.Party

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		invoices, err := r.Invoice.FindByParty(ctx, partyID)
		if err != nil {
			return err
		}
		for i := range invoices {
			inv := &invoices[i]
			if inv.Status == models.InvoiceStatusDraft || inv.Status == models.InvoiceStatusCancelled {
				continue
			}
			if _, err := recalculateInvoice(ctx, r, inv.ID); err != nil {
				return err
			}
		}

		party, err = recalculatePartyBalance(ctx, r, partyID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return party, nil
}

// RecalculateAllBalances sweeps every party. Used by the scheduled
// consistency job; errors on individual parties are logged and skipped so
// one bad party does not stall the sweep.
func (s *PartyService) RecalculateAllBalances(ctx context.Context) error {
	ids, err := s.repos.Party.FindAllIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := s.RecalculateBalance(ctx, id); err != nil {
			logger.Error(fmt.Sprintf("[Balance sweep] Failed to recalculate party %d: %v", id, err))
		}
	}
	return nil
}
