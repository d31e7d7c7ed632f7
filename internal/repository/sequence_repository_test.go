package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSequenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.DocumentSequence{}))
	return db
}

func TestSequenceNextIncrementsPerPrefixAndDay(t *testing.T) {
	db := newSequenceTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	first, err := repo.Next(ctx, models.PrefixInvoice, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260827-0001", first)

	second, err := repo.Next(ctx, models.PrefixInvoice, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260827-0002", second)

	// Other prefixes run their own counters.
	receipt, err := repo.Next(ctx, models.PrefixReceipt, day)
	require.NoError(t, err)
	assert.Equal(t, "RCP-20260827-0001", receipt)

	// A new day resets the counter.
	nextDay, err := repo.Next(ctx, models.PrefixInvoice, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "INV-20260828-0001", nextDay)
}

func TestFormatDocumentNoPadsToFourDigits(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INS-20260105-0042", models.FormatDocumentNo(models.PrefixInstallation, day, 42))
	assert.Equal(t, "RET-20260105-12345", models.FormatDocumentNo(models.PrefixSalesReturn, day, 12345))
}
