package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/mobilia/erp-api/internal/models"
)

// ReturnFSM wraps a return order with its state machine
type ReturnFSM struct {
	ret *models.ReturnOrder
	fsm *fsm.FSM
}

// NewReturnFSM creates a new return order state machine
func NewReturnFSM(ret *models.ReturnOrder) *ReturnFSM {
	rfsm := &ReturnFSM{
		ret: ret,
	}

	rfsm.fsm = fsm.NewFSM(
		ret.Status,
		fsm.Events{
			// draft → approved (moves stock)
			{Name: "approve", Src: []string{models.ReturnStatusDraft}, Dst: models.ReturnStatusApproved},

			// draft → rejected
			{Name: "reject", Src: []string{models.ReturnStatusDraft}, Dst: models.ReturnStatusRejected},
		},
		fsm.Callbacks{},
	)

	return rfsm
}

// Approve transitions the return to approved state
func (r *ReturnFSM) Approve(ctx context.Context) error {
	if !r.ret.MayApprove() {
		return fmt.Errorf("return cannot be approved in current state: %s", r.ret.Status)
	}

	if err := r.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve return: %w", err)
	}

	r.ret.Status = r.fsm.Current()
	return nil
}

// Reject transitions the return to rejected state
func (r *ReturnFSM) Reject(ctx context.Context) error {
	if !r.ret.MayReject() {
		return fmt.Errorf("return cannot be rejected in current state: %s", r.ret.Status)
	}

	if err := r.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject return: %w", err)
	}

	r.ret.Status = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *ReturnFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *ReturnFSM) Can(event string) bool {
	return r.fsm.Can(event)
}
