package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAuditEntriesShareBatchID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.svcs.Audit.Begin(testActor)
	rec.Record(models.Reference{Kind: models.RefInvoice, ID: 1},
		models.AuditActionCreated, nil, map[string]interface{}{"status": "draft"})
	rec.Record(models.Reference{Kind: models.RefInvoice, ID: 1},
		models.AuditActionIssued,
		map[string]interface{}{"status": "draft"},
		map[string]interface{}{"status": "issued"})
	env.svcs.Audit.Commit(ctx, rec)

	entries, err := env.svcs.Audit.FindBySubject(ctx, models.RefInvoice, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, rec.BatchID(), entries[0].BatchID)
	assert.Equal(t, entries[0].BatchID, entries[1].BatchID)
	// Oldest first.
	assert.Equal(t, models.AuditActionCreated, entries[0].Action)
	assert.Equal(t, models.AuditActionIssued, entries[1].Action)
	assert.Equal(t, testActor.ID, entries[0].ActorID)
	assert.Equal(t, testActor.IP, entries[0].IPAddress)
}

func TestAuditNothingWrittenWithoutCommit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.svcs.Audit.Begin(testActor)
	rec.Record(models.Reference{Kind: models.RefVoucher, ID: 7},
		models.AuditActionPosted, nil, map[string]interface{}{"status": "posted"})

	assert.EqualValues(t, 0, env.auditCount(t))
}

func TestAuditRolledBackOperationLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Mirror the service pattern: record during the transaction, commit the
	// recorder only if the transaction commits.
	rec := env.svcs.Audit.Begin(testActor)
	err := env.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := env.repos.WithTx(tx)
		party := &models.Party{PartyType: models.PartyTypeCustomer, Name: "Ghost"}
		if err := r.Party.Create(ctx, party); err != nil {
			return err
		}
		rec.Record(models.Reference{Kind: models.RefInvoice, ID: party.ID},
			models.AuditActionCreated, nil, map[string]interface{}{"name": party.Name})
		return errors.New("boom")
	})
	require.Error(t, err)

	// The recorder was never committed, so no audit rows exist and neither
	// does the party.
	assert.EqualValues(t, 0, env.auditCount(t))
	var count int64
	require.NoError(t, env.db.Model(&models.Party{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAuditFailedPostWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)
	baseline := env.auditCount(t)

	// Posting without allocations fails; the operation must not add entries.
	_, err := env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, baseline, env.auditCount(t))
}

func TestAuditTrailRecordsLedgerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: time.Now(), Subtotal: decimal.NewFromInt(1000),
	}, testActor)
	require.NoError(t, err)
	_, err = env.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	require.NoError(t, err)
	_, err = env.svcs.Invoice.Cancel(ctx, invoice.ID, testActor)
	require.NoError(t, err)

	entries, err := env.svcs.Audit.FindBySubject(ctx, models.RefInvoice, invoice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.AuditActionCreated, entries[0].Action)
	assert.Equal(t, models.AuditActionIssued, entries[1].Action)
	assert.Equal(t, models.AuditActionCancelled, entries[2].Action)

	// Separate operations get separate batches.
	assert.NotEqual(t, entries[0].BatchID, entries[1].BatchID)

	require.NotNil(t, entries[1].AfterState)
	assert.Contains(t, *entries[1].AfterState, "issued")
}

func TestAuditTrailResolvesSubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)

	subject, entries, err := env.svcs.Audit.Trail(ctx,
		models.Reference{Kind: models.RefInvoice, ID: invoice.ID})
	require.NoError(t, err)
	resolved, ok := subject.(*models.Invoice)
	require.True(t, ok)
	assert.Equal(t, invoice.ID, resolved.ID)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.AuditActionCreated, entries[0].Action)

	// An unregistered kind cannot resolve.
	_, _, err = env.svcs.Audit.Trail(ctx, models.Reference{Kind: "warehouse", ID: 1})
	assert.ErrorIs(t, err, ErrValidation)

	// A registered kind pointing at nothing is not found.
	_, _, err = env.svcs.Audit.Trail(ctx, models.Reference{Kind: models.RefInvoice, ID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotEmptyIsNull(t *testing.T) {
	assert.Nil(t, models.Snapshot(nil))
	assert.Nil(t, models.Snapshot(map[string]interface{}{}))

	s := models.Snapshot(map[string]interface{}{"status": "draft"})
	require.NotNil(t, s)
	assert.Contains(t, *s, "draft")
}
