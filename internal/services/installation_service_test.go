package services

import (
	"context"
	"testing"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createInstallation(t *testing.T) *models.InstallationOrder {
	t.Helper()
	customer := e.createCustomer(t)
	order, err := e.svcs.Installation.Create(context.Background(), CreateInstallationInput{
		PartyID: customer.ID,
		Address: "123 Main St",
	}, testActor)
	require.NoError(t, err)
	return order
}

func (e *testEnv) attachPhoto(t *testing.T, orderID uint, tag string) {
	t.Helper()
	require.NoError(t, e.repos.Installation.CreatePhoto(context.Background(), &models.InstallationPhoto{
		InstallationOrderID: orderID,
		Path:                "installations/test.jpg",
		Tag:                 tag,
		UploadedBy:          testActor.ID,
	}))
}

func TestInstallationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createInstallation(t)
	assert.Equal(t, models.InstallationStatusDraft, order.Status)
	day := models.SequenceDay(time.Now())
	assert.Equal(t, "INS-"+day+"-0001", order.OrderNo)

	visit := time.Now().Add(48 * time.Hour)
	scheduled, err := env.svcs.Installation.Schedule(ctx, order.ID, visit, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.NotNil(t, scheduled.SLAStartedAt)

	started, err := env.svcs.Installation.Start(ctx, order.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusInProgress, started.Status)

	// Completion requires an "after" photo on file.
	_, err = env.svcs.Installation.Complete(ctx, order.ID, testActor)
	assert.ErrorIs(t, err, ErrPrecondition)

	env.attachPhoto(t, order.ID, models.PhotoTagBefore)
	_, err = env.svcs.Installation.Complete(ctx, order.ID, testActor)
	assert.ErrorIs(t, err, ErrPrecondition)

	env.attachPhoto(t, order.ID, models.PhotoTagAfter)
	completed, err := env.svcs.Installation.Complete(ctx, order.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
}

func TestInstallationInvalidTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createInstallation(t)

	_, err := env.svcs.Installation.Start(ctx, order.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.svcs.Installation.MarkNoShow(ctx, order.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.svcs.Installation.Complete(ctx, order.ID, testActor)
	assert.ErrorIs(t, err, ErrPrecondition) // no photos, checked before the FSM
}

func TestInstallationNoShowAndReschedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createInstallation(t)
	_, err := env.svcs.Installation.Schedule(ctx, order.ID, time.Now().Add(24*time.Hour), testActor)
	require.NoError(t, err)

	noShow, err := env.svcs.Installation.MarkNoShow(ctx, order.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusNoShow, noShow.Status)
	// The no-show pauses the SLA clock.
	assert.NotNil(t, noShow.SLAPausedAt)

	rescheduled, err := env.svcs.Installation.Schedule(ctx, order.ID, time.Now().Add(72*time.Hour), testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusScheduled, rescheduled.Status)
	// Rescheduling resumes the clock and accrues the paused interval.
	assert.Nil(t, rescheduled.SLAPausedAt)
}

func TestInstallationHoldForParts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createInstallation(t)
	_, err := env.svcs.Installation.Schedule(ctx, order.ID, time.Now().Add(24*time.Hour), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Installation.Start(ctx, order.ID, testActor)
	require.NoError(t, err)

	held, err := env.svcs.Installation.HoldForParts(ctx, order.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusPendingParts, held.Status)
	assert.NotNil(t, held.SLAPausedAt)

	// Parts arrived, back to scheduled.
	resumed, err := env.svcs.Installation.Schedule(ctx, order.ID, time.Now().Add(24*time.Hour), testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallationStatusScheduled, resumed.Status)
	assert.Nil(t, resumed.SLAPausedAt)
}

func TestInstallationCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	_, err := env.svcs.Installation.Create(ctx, CreateInstallationInput{
		PartyID: customer.ID, Address: "",
	}, testActor)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svcs.Installation.Create(ctx, CreateInstallationInput{
		PartyID: 999, Address: "Somewhere",
	}, testActor)
	assert.ErrorIs(t, err, ErrNotFound)
}
