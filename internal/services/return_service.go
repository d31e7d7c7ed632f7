package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/statemachine"
	"gorm.io/gorm"
)

// ReturnLineInput is one product line on a new return
type ReturnLineInput struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Note      *string `json:"note"`
}

// CreateReturnInput carries the fields for a new sales or purchase return
type CreateReturnInput struct {
	Kind        string            `json:"kind"`
	ReferenceID uint              `json:"reference_id"`
	Reason      *string           `json:"reason"`
	Lines       []ReturnLineInput `json:"lines"`
}

type ReturnService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewReturnService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService) *ReturnService {
	return &ReturnService{db: db, repos: repos, auditSvc: auditSvc}
}

// sourceQuantities loads the source document of a return and answers the
// party it belongs to, whether it accepts returns, and how many units of
// each product it carried.
func (s *ReturnService) sourceQuantities(ctx context.Context, r *repository.Repositories, kind string, referenceID uint) (uint, bool, map[uint]int, error) {
	quantities := make(map[uint]int)

	switch kind {
	case models.ReturnKindSales:
		order, err := r.SalesOrder.FindByIDWithItems(ctx, referenceID)
		if err != nil {
			return 0, false, nil, err
		}
		for _, item := range order.Items {
			quantities[item.ProductID] += item.Quantity
		}
		return order.PartyID, order.AllowsReturns(), quantities, nil

	case models.ReturnKindPurchase:
		purchase, err := r.Purchase.FindByIDWithItems(ctx, referenceID)
		if err != nil {
			return 0, false, nil, err
		}
		for _, item := range purchase.Items {
			quantities[item.ProductID] += item.Quantity
		}
		return purchase.PartyID, purchase.AllowsReturns(), quantities, nil
	}

	return 0, false, nil, fmt.Errorf("unknown return kind %q: %w", kind, ErrValidation)
}

func returnReferenceKind(kind string) string {
	if kind == models.ReturnKindPurchase {
		return models.RefPurchase
	}
	return models.RefSalesOrder
}

func returnSubjectKind(kind string) string {
	if kind == models.ReturnKindPurchase {
		return models.RefPurchaseReturn
	}
	return models.RefSalesReturn
}

// Create records a new draft return against a delivered sales order or a
// received purchase. Every line must name a product that is on the source
// document.
func (s *ReturnService) Create(ctx context.Context, input CreateReturnInput, actor Actor) (*models.ReturnOrder, error) {
	if input.Kind != models.ReturnKindSales && input.Kind != models.ReturnKindPurchase {
		return nil, fmt.Errorf("unknown return kind %q: %w", input.Kind, ErrValidation)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("a return needs at least one line: %w", ErrValidation)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive: %w", ErrValidation)
		}
	}

	rec := s.auditSvc.Begin(actor)
	var ret *models.ReturnOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		partyID, allowsReturns, quantities, err := s.sourceQuantities(ctx, r, input.Kind, input.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !allowsReturns {
			return fmt.Errorf("source document does not accept returns yet: %w", ErrPrecondition)
		}
		for _, line := range input.Lines {
			if _, ok := quantities[line.ProductID]; !ok {
				return fmt.Errorf("product %d is not on the source document: %w", line.ProductID, ErrValidation)
			}
		}

		returnNo, err := nextReturnNo(ctx, r.Sequence, input.Kind, time.Now())
		if err != nil {
			return err
		}

		ret = &models.ReturnOrder{
			ReturnNo:      returnNo,
			Kind:          input.Kind,
			PartyID:       partyID,
			ReferenceKind: returnReferenceKind(input.Kind),
			ReferenceID:   input.ReferenceID,
			Status:        models.ReturnStatusDraft,
			Reason:        input.Reason,
		}
		for _, line := range input.Lines {
			ret.Lines = append(ret.Lines, models.ReturnLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Note:      line.Note,
			})
		}
		if err := r.Return.Create(ctx, ret); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: returnSubjectKind(ret.Kind), ID: ret.ID},
			models.AuditActionCreated,
			nil,
			map[string]interface{}{
				"return_no":    ret.ReturnNo,
				"kind":         ret.Kind,
				"reference_id": ret.ReferenceID,
				"status":       ret.Status,
			})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return ret, nil
}

// Approve accepts a draft return and moves stock in one transaction. Sales
// returns bring the goods back in; purchase returns take them out, failing
// if not enough stock is on hand. Per product, the total quantity approved
// across all returns of the same source document can never exceed what the
// document carried.
func (s *ReturnService) Approve(ctx context.Context, id uint, actor Actor) (*models.ReturnOrder, error) {
	rec := s.auditSvc.Begin(actor)
	var ret *models.ReturnOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		ro, err := r.Return.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		loaded, err := r.Return.FindByIDWithLines(ctx, id)
		if err != nil {
			return err
		}
		ro.Lines = loaded.Lines

		machine := statemachine.NewReturnFSM(ro)
		if err := machine.Approve(ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidState)
		}

		// The source document must still accept returns at approval time,
		// not only when the draft was taken.
		_, allowsReturns, sourceQty, err := s.sourceQuantities(ctx, r, ro.Kind, ro.ReferenceID)
		if err != nil {
			return err
		}
		if !allowsReturns {
			return fmt.Errorf("source document no longer accepts returns: %w", ErrPrecondition)
		}

		// Validate per-product cumulative quantities before moving anything.
		perProduct := make(map[uint]int)
		for _, line := range ro.Lines {
			perProduct[line.ProductID] += line.Quantity
		}
		for productID, qty := range perProduct {
			approved, err := r.Return.SumApprovedQuantity(ctx, ro.ReferenceKind, ro.ReferenceID, productID, ro.ID)
			if err != nil {
				return err
			}
			if approved+qty > sourceQty[productID] {
				return fmt.Errorf("product %d: %d already returned, %d requested, %d on source document: %w",
					productID, approved, qty, sourceQty[productID], ErrQuantityExceeded)
			}
		}

		direction := ro.StockDirection()
		for productID, qty := range perProduct {
			level, err := r.Stock.FindLevelForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if direction == models.StockDirectionOut {
				if level.Quantity < qty {
					return fmt.Errorf("product %d: %d on hand, %d to return: %w",
						productID, level.Quantity, qty, ErrInsufficientStock)
				}
				level.Quantity -= qty
			} else {
				level.Quantity += qty
			}
			if err := r.Stock.UpdateLevel(ctx, level); err != nil {
				return err
			}

			movement := &models.StockMovement{
				ProductID:     productID,
				Direction:     direction,
				Quantity:      qty,
				ReferenceKind: returnSubjectKind(ro.Kind),
				ReferenceID:   ro.ID,
			}
			if err := r.Stock.CreateMovement(ctx, movement); err != nil {
				return err
			}
		}

		now := time.Now()
		ro.ApprovedAt = &now
		ro.ApprovedBy = &actor.ID
		if err := r.Return.Update(ctx, ro); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: returnSubjectKind(ro.Kind), ID: ro.ID},
			models.AuditActionApproved,
			map[string]interface{}{"status": models.ReturnStatusDraft},
			map[string]interface{}{"status": ro.Status, "stock_direction": direction})

		ret = ro
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return ret, nil
}

// Reject declines a draft return. No stock moves.
func (s *ReturnService) Reject(ctx context.Context, id uint, actor Actor) (*models.ReturnOrder, error) {
	rec := s.auditSvc.Begin(actor)
	var ret *models.ReturnOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		ro, err := r.Return.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		machine := statemachine.NewReturnFSM(ro)
		if err := machine.Reject(ctx); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidState)
		}

		now := time.Now()
		ro.RejectedAt = &now
		if err := r.Return.Update(ctx, ro); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: returnSubjectKind(ro.Kind), ID: ro.ID},
			models.AuditActionRejected,
			map[string]interface{}{"status": models.ReturnStatusDraft},
			map[string]interface{}{"status": ro.Status})

		ret = ro
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return ret, nil
}

func (s *ReturnService) FindByID(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	ret, err := s.repos.Return.FindByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ret, nil
}

func (s *ReturnService) List(ctx context.Context, query *repository.ListQuery) ([]models.ReturnOrder, int64, error) {
	return s.repos.Return.List(ctx, query)
}
