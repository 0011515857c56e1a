package caching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infracache "github.com/amirasaad/feescope/infra/cache"
	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/feetable"
	"github.com/amirasaad/feescope/pkg/rates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRateSource struct {
	mock.Mock
}

func (m *mockRateSource) FetchRates(ctx context.Context, base currency.Code) (*rates.Table, error) {
	args := m.Called(ctx, base)
	tbl, _ := args.Get(0).(*rates.Table)
	return tbl, args.Error(1)
}

func (m *mockRateSource) Name() string { return "mock" }

func newStore(t *testing.T) *infracache.MemoryStore {
	s := infracache.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRateSource_ReadThrough(t *testing.T) {
	src := new(mockRateSource)
	tbl := rates.NewTable(currency.USD, map[currency.Code]float64{currency.NGN: 1500}, time.Now().UTC(), "mock")
	src.On("FetchRates", mock.Anything, currency.USD).Return(tbl, nil).Once()

	c := NewRateSource(src, newStore(t), time.Minute, nil)
	ctx := context.Background()

	first, err := c.FetchRates(ctx, currency.USD)
	require.NoError(t, err)
	second, err := c.FetchRates(ctx, currency.USD)
	require.NoError(t, err)

	assert.Equal(t, first.Rates, second.Rates)
	assert.Equal(t, "mock", c.Name())
	src.AssertExpectations(t)

	require.NoError(t, c.Invalidate(ctx, currency.USD))
	src.On("FetchRates", mock.Anything, currency.USD).Return(tbl, nil).Once()
	_, err = c.FetchRates(ctx, currency.USD)
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "FetchRates", 2)
}

func TestRateSource_ErrorsAreNotCached(t *testing.T) {
	src := new(mockRateSource)
	boom := errors.New("boom")
	src.On("FetchRates", mock.Anything, currency.USD).Return(nil, boom).Twice()

	c := NewRateSource(src, newStore(t), time.Minute, nil)
	_, err := c.FetchRates(context.Background(), currency.USD)
	assert.ErrorIs(t, err, boom)
	_, err = c.FetchRates(context.Background(), currency.USD)
	assert.ErrorIs(t, err, boom)
	src.AssertExpectations(t)
}

type slowFees struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *slowFees) FetchFees(context.Context) (feetable.Table, error) {
	s.calls.Add(1)
	<-s.release
	return feetable.Table{
		feetable.Customer: {"Payout": {{Service: "NGN Payout - Instant", Fee: "₦50"}}},
	}, nil
}

func TestFeeSource_CollapsesConcurrentMisses(t *testing.T) {
	src := &slowFees{release: make(chan struct{})}
	c := NewFeeSource(src, newStore(t), time.Minute, nil)

	var wg sync.WaitGroup
	results := make([]feetable.Table, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := c.FetchFees(context.Background())
			assert.NoError(t, err)
			results[i] = table
		}()
	}
	assert.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, table := range results {
		e, err := table.Find(feetable.Customer, "Payout", "NGN Payout - Instant")
		require.NoError(t, err)
		assert.Equal(t, "₦50", e.Fee)
	}

	// Served from the store now.
	_, err := c.FetchFees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestLookup_DropsCorruptEntries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, feesKey, []byte("{not json"), time.Minute))

	src := &slowFees{release: make(chan struct{})}
	close(src.release)
	c := NewFeeSource(src, store, time.Minute, nil)

	_, err := c.FetchFees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}
