package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/mobilia/erp-api/internal/models"
)

// InstallationFSM wraps an installation order with its state machine
type InstallationFSM struct {
	order *models.InstallationOrder
	fsm   *fsm.FSM
}

// NewInstallationFSM creates a new installation order state machine
func NewInstallationFSM(order *models.InstallationOrder) *InstallationFSM {
	ifsm := &InstallationFSM{
		order: order,
	}

	ifsm.fsm = fsm.NewFSM(
		order.Status,
		fsm.Events{
			// draft/no_show/pending_parts → scheduled
			{Name: "schedule", Src: []string{
				models.InstallationStatusDraft,
				models.InstallationStatusNoShow,
				models.InstallationStatusPendingParts,
			}, Dst: models.InstallationStatusScheduled},

			// scheduled → in_progress
			{Name: "start", Src: []string{models.InstallationStatusScheduled}, Dst: models.InstallationStatusInProgress},

			// scheduled → no_show (pauses the SLA clock)
			{Name: "no_show", Src: []string{models.InstallationStatusScheduled}, Dst: models.InstallationStatusNoShow},

			// scheduled/in_progress → pending_parts (pauses the SLA clock)
			{Name: "hold_parts", Src: []string{
				models.InstallationStatusScheduled,
				models.InstallationStatusInProgress,
			}, Dst: models.InstallationStatusPendingParts},

			// in_progress → completed (requires "after" photo)
			{Name: "complete", Src: []string{models.InstallationStatusInProgress}, Dst: models.InstallationStatusCompleted},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Schedule transitions the order to scheduled state
func (i *InstallationFSM) Schedule(ctx context.Context) error {
	if !i.order.MaySchedule() {
		return fmt.Errorf("installation cannot be scheduled in current state: %s", i.order.Status)
	}

	if err := i.fsm.Event(ctx, "schedule"); err != nil {
		return fmt.Errorf("failed to schedule installation: %w", err)
	}

	i.order.Status = i.fsm.Current()
	return nil
}

// Start transitions the order to in_progress state
func (i *InstallationFSM) Start(ctx context.Context) error {
	if !i.order.MayStart() {
		return fmt.Errorf("installation cannot be started in current state: %s", i.order.Status)
	}

	if err := i.fsm.Event(ctx, "start"); err != nil {
		return fmt.Errorf("failed to start installation: %w", err)
	}

	i.order.Status = i.fsm.Current()
	return nil
}

// MarkNoShow transitions the order to no_show state
func (i *InstallationFSM) MarkNoShow(ctx context.Context) error {
	if !i.order.MayMarkNoShow() {
		return fmt.Errorf("installation cannot be marked no-show in current state: %s", i.order.Status)
	}

	if err := i.fsm.Event(ctx, "no_show"); err != nil {
		return fmt.Errorf("failed to mark installation no-show: %w", err)
	}

	i.order.Status = i.fsm.Current()
	return nil
}

// HoldForParts transitions the order to pending_parts state
func (i *InstallationFSM) HoldForParts(ctx context.Context) error {
	if !i.order.MayHoldForParts() {
		return fmt.Errorf("installation cannot be held for parts in current state: %s", i.order.Status)
	}

	if err := i.fsm.Event(ctx, "hold_parts"); err != nil {
		return fmt.Errorf("failed to hold installation for parts: %w", err)
	}

	i.order.Status = i.fsm.Current()
	return nil
}

// Complete transitions the order to completed state
func (i *InstallationFSM) Complete(ctx context.Context) error {
	if !i.order.MayComplete() {
		return fmt.Errorf("installation cannot be completed in current state: %s", i.order.Status)
	}

	if err := i.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete installation: %w", err)
	}

	i.order.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InstallationFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InstallationFSM) Can(event string) bool {
	return i.fsm.Can(event)
}
