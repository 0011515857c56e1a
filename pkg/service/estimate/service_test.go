package estimate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/fee"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/amirasaad/feescope/pkg/rates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRates struct{ mock.Mock }

func (m *mockRates) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	args := m.Called(ctx, base)
	t, _ := args.Get(0).(*rates.Table)
	return t, args.Error(1)
}

func (m *mockRates) Name() string { return "mock" }

var asOf = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func usdTable() *rates.Table {
	return rates.NewTable(currency.USD, map[currency.Code]float64{currency.NGN: 1500}, asOf, "mock")
}

func schedule() provider.FeeSource {
	return provider.FeeSourceFunc(func(context.Context) (feetable.Table, error) {
		return feetable.Table{
			feetable.Customer: {
				"Payout": {
					{Service: "NGN Payout - Instant", Fee: "₦50"},
					{Service: "USD Payout - 24hours", Fee: "$5", Description: "Express"},
				},
				"Freedom Virtual Card": {
					{Service: "Card Funding", Fee: "1% ($1 – $5)"},
				},
			},
			feetable.Business: {
				"Business Collections": {
					{Service: "Card Collections", Fee: "1.5% ($1 – $5)"},
				},
			},
		}, nil
	})
}

func TestEvaluate_SameCurrencyNeverFetchesRates(t *testing.T) {
	rs := new(mockRates)
	s := New(schedule(), rs, nil)

	ev, err := s.Evaluate(context.Background(), "1.5%", 100, currency.USD)
	require.NoError(t, err)
	v, ok := ev.Result.Value()
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
	assert.Nil(t, ev.RatesAsOf)
	rs.AssertNotCalled(t, "FetchRates", mock.Anything, mock.Anything)
}

func TestEvaluate_ConvertsThroughRateTable(t *testing.T) {
	rs := new(mockRates)
	rs.On("FetchRates", mock.Anything, currency.USD).Return(usdTable(), nil).Once()
	s := New(schedule(), rs, nil)

	ev, err := s.Evaluate(context.Background(), "1% ($1 – $5)", 10000, currency.NGN)
	require.NoError(t, err)
	v, ok := ev.Result.Value()
	require.True(t, ok)
	// 1% of 10,000 NGN is 100, raised to the $1 floor.
	assert.Equal(t, 1500.0, v)
	assert.Equal(t, "1% (min ₦1,500, max ₦7,500)", ev.Result.Display)
	require.NotNil(t, ev.RatesAsOf)
	assert.Equal(t, asOf, *ev.RatesAsOf)
	assert.Equal(t, "mock", ev.RatesSource)
	rs.AssertExpectations(t)
}

func TestEvaluate_RateFailureDegrades(t *testing.T) {
	rs := new(mockRates)
	rs.On("FetchRates", mock.Anything, currency.USD).Return(nil, errors.New("down")).Once()
	s := New(schedule(), rs, nil)

	ev, err := s.Evaluate(context.Background(), "$5", 100, currency.NGN)
	require.NoError(t, err)
	_, ok := ev.Result.Value()
	assert.False(t, ok)
	assert.True(t, ev.Result.Partial)
	assert.Equal(t, "$5 (rate unavailable)", ev.Result.Display)
	require.Len(t, ev.Issues, 1)
	assert.Contains(t, ev.Issues[0], "down")

	_, err = New(schedule(), nil, nil).Evaluate(context.Background(), "$5", 100, currency.NGN)
	require.NoError(t, err)
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(schedule(), nil, nil).Evaluate(ctx, "FREE", 1, currency.USD)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimate(t *testing.T) {
	s := New(schedule(), nil, nil)

	est, err := s.Estimate(context.Background(), Request{
		UserType: "individual",
		Section:  "Payout",
		Service:  "NGN Payout - Instant",
		Amount:   20000,
		Currency: currency.NGN,
	})
	require.NoError(t, err)
	assert.Equal(t, feetable.Customer, est.UserType)
	assert.Equal(t, "₦50", est.Entry.Fee)
	v, ok := est.Result.Value()
	require.True(t, ok)
	assert.Equal(t, 50.0, v)

	_, err = s.Estimate(context.Background(), Request{UserType: "business", Section: "Payout", Service: "x", Amount: 1, Currency: currency.USD})
	assert.ErrorIs(t, err, feetable.ErrSectionNotFound)

	_, err = s.Estimate(context.Background(), Request{UserType: "partner"})
	assert.ErrorIs(t, err, feetable.ErrUserTypeNotFound)

	failing := provider.FeeSourceFunc(func(context.Context) (feetable.Table, error) {
		return nil, provider.ErrProviderUnavailable
	})
	_, err = New(failing, nil, nil).Estimate(context.Background(), Request{UserType: "business"})
	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
}

func TestSchedule(t *testing.T) {
	sections, err := New(schedule(), nil, nil).Schedule(context.Background(), "individual")
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "Freedom Virtual Card", sections[0].Name)
	card := sections[0].Items[0]
	assert.Equal(t, 1.0, card.Rule.Percent)
	assert.Equal(t, "1% (min $1, max $5)", card.Summary)

	payout := sections[1]
	assert.Equal(t, "Payout", payout.Name)
	assert.Equal(t, "$5 (Express)", payout.Items[1].Label)
	assert.Equal(t, fee.Parse("₦50"), payout.Items[0].Rule)
}
