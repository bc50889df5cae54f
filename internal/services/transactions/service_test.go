package transactions

import (
	"context"
	"testing"

	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows []models.Transaction
	err  error
}

func (f *fakeSource) Transactions(ctx context.Context, constituentID string) ([]models.Transaction, error) {
	return f.rows, f.err
}

func TestService_GivingHistory(t *testing.T) {
	source := &fakeSource{rows: []models.Transaction{
		{ConstituentID: "C-1", GiftAmount: "5000", GiftDate: "2024-11-20", Fund: "Annual Fund"},
		{ConstituentID: "C-1", GiftAmount: "$2,500.00", GiftDate: "2015-03-01"},
	}}
	svc := NewService(source, logger.NewTestLogger(t))

	history, err := svc.GivingHistory(context.Background(), "C-1")
	require.NoError(t, err)

	assert.Equal(t, "C-1", history.ConstituentID)
	require.Len(t, history.Transactions, 2)
	assert.Equal(t, "$5,000.00", history.Transactions[0].GiftAmount, "amounts normalized for display")
	assert.Equal(t, "$2,500.00", history.Transactions[1].GiftAmount)

	require.NotNil(t, history.Metrics)
	assert.Equal(t, "$7,500.00", history.Metrics.LifetimeGiving)
	assert.Equal(t, "2015-03-01", history.Metrics.FirstGiftDate)
}

func TestService_GivingHistory_NoTransactions(t *testing.T) {
	svc := NewService(&fakeSource{}, logger.NewTestLogger(t))

	history, err := svc.GivingHistory(context.Background(), "C-1")
	require.NoError(t, err)
	assert.Empty(t, history.Transactions)
	assert.Nil(t, history.Metrics)
}

func TestService_GivingHistory_RequiresConstituentID(t *testing.T) {
	svc := NewService(&fakeSource{}, logger.NewTestLogger(t))

	_, err := svc.GivingHistory(context.Background(), "")
	assert.ErrorIs(t, err, ErrConstituentRequired)
}

func TestService_GivingHistory_SourceError(t *testing.T) {
	svc := NewService(&fakeSource{err: assert.AnError}, logger.NewTestLogger(t))

	_, err := svc.GivingHistory(context.Background(), "C-1")
	assert.ErrorIs(t, err, assert.AnError)
}
