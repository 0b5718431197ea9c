package quote_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"levelup/internal/db"
	"levelup/internal/quote"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	return gdb
}

func TestTodayIsStableWithinADay(t *testing.T) {
	gdb := openTestDB(t)
	svc := &quote.Service{DB: gdb}
	ctx := context.Background()

	quotes := []quote.Quote{
		{Text: "Fais de ta vie un rêve", Language: "fr", IsActive: true},
		{Text: "Un pas après l'autre", Language: "fr", IsActive: true},
		{Text: "Le succès est une habitude", Language: "fr", IsActive: true},
	}
	require.NoError(t, gdb.Create(&quotes).Error)

	morning := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC)

	q1, err := svc.Today(ctx, "fr", morning)
	require.NoError(t, err)
	q2, err := svc.Today(ctx, "fr", evening)
	require.NoError(t, err)
	require.Equal(t, q1.ID, q2.ID)
}

func TestTodayFiltersLanguageAndActive(t *testing.T) {
	gdb := openTestDB(t)
	svc := &quote.Service{DB: gdb}
	ctx := context.Background()
	now := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&[]quote.Quote{
		{Text: "inactive", Language: "fr", IsActive: false},
		{Text: "one step at a time", Language: "en", IsActive: true},
	}).Error)

	_, err := svc.Today(ctx, "fr", now)
	require.ErrorIs(t, err, quote.ErrNoQuote)

	q, err := svc.Today(ctx, "en", now)
	require.NoError(t, err)
	require.Equal(t, "one step at a time", q.Text)
}
