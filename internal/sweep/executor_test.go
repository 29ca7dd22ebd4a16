package sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotsweep/internal/common"
	"lotsweep/internal/model"
	"lotsweep/internal/session"
)

// fakeClient is a scriptable marketplace client that records the order of
// every external call.
type fakeClient struct {
	listings     map[int64][]model.Listing
	listingsErr  map[int64]error
	deleteErr    map[int64]error
	deleteCalls  []int64
	listingCalls []int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		listings:    make(map[int64][]model.Listing),
		listingsErr: make(map[int64]error),
		deleteErr:   make(map[int64]error),
	}
}

func (f *fakeClient) GetCategories(context.Context) ([]model.Category, error) {
	return nil, errors.New("not used by the executor")
}

func (f *fakeClient) GetListings(_ context.Context, categoryID int64) ([]model.Listing, error) {
	f.listingCalls = append(f.listingCalls, categoryID)
	if err := f.listingsErr[categoryID]; err != nil {
		return nil, err
	}
	return f.listings[categoryID], nil
}

func (f *fakeClient) DeleteListing(_ context.Context, listingID int64) error {
	f.deleteCalls = append(f.deleteCalls, listingID)
	return f.deleteErr[listingID]
}

// sleepRecorder captures the pacing sequence without actually waiting.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.delays = append(s.delays, d)
	return nil
}

func setupExecutor(t *testing.T, client *fakeClient, config Config) (*Executor, *session.Store, *sleepRecorder) {
	t.Helper()
	store := session.NewStore(time.Minute, time.Minute)
	recorder := &sleepRecorder{}
	executor := New(store, client, config)
	executor.sleep = recorder.sleep
	return executor, store, recorder
}

func createRecord(t *testing.T, store *session.Store, chosen ...int64) int64 {
	t.Helper()
	categories := []model.Category{
		{ID: 100, Name: "Games"},
		{ID: 101, Name: "Software"},
		{ID: 102, Name: "Accounts"},
	}
	return store.Create(categories, chosen, false)
}

func TestExecuteGuards(t *testing.T) {
	t.Run("unknown record", func(t *testing.T) {
		executor, _, _ := setupExecutor(t, newFakeClient(), DefaultConfig())

		_, err := executor.Execute(context.Background(), 42)
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("empty selection makes no external calls", func(t *testing.T) {
		client := newFakeClient()
		executor, store, _ := setupExecutor(t, client, DefaultConfig())
		id := createRecord(t, store)

		_, err := executor.Execute(context.Background(), id)
		assert.ErrorIs(t, err, common.ErrEmptySelection)
		assert.Empty(t, client.listingCalls)
		assert.Empty(t, client.deleteCalls)

		// Rejection must not consume the record.
		_, ok := store.Get(id)
		assert.True(t, ok)
	})
}

func TestExecuteFilters(t *testing.T) {
	client := newFakeClient()
	client.listings[100] = []model.Listing{
		{ID: 1, Title: "active", Disabled: false},
		{ID: 2, Title: "disabled", Disabled: true},
	}

	t.Run("default config deletes only inactive listings", func(t *testing.T) {
		client.deleteCalls = nil
		executor, store, _ := setupExecutor(t, client, DefaultConfig())
		id := createRecord(t, store, 100)

		report, err := executor.Execute(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, client.deleteCalls)
		assert.Equal(t, 1, report.SuccessCount)
	})

	t.Run("both filters on deletes everything", func(t *testing.T) {
		client.deleteCalls = nil
		config := DefaultConfig()
		config.IncludeActive = true
		executor, store, _ := setupExecutor(t, client, config)
		id := createRecord(t, store, 100)

		report, err := executor.Execute(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, client.deleteCalls)
		assert.Equal(t, 2, report.SuccessCount)
	})

	t.Run("both filters off deletes nothing", func(t *testing.T) {
		client.deleteCalls = nil
		config := DefaultConfig()
		config.IncludeInactive = false
		executor, store, _ := setupExecutor(t, client, config)
		id := createRecord(t, store, 100)

		report, err := executor.Execute(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, client.deleteCalls)
		assert.Zero(t, report.SuccessCount)
	})
}

func TestExecutePartialFailures(t *testing.T) {
	client := newFakeClient()
	config := Config{IncludeActive: true, IncludeInactive: true}

	listings := make([]model.Listing, 0, 10)
	for i := int64(1); i <= 10; i++ {
		listings = append(listings, model.Listing{ID: i, Title: fmt.Sprintf("listing %d", i)})
	}
	client.listings[100] = listings
	client.deleteErr[3] = errors.New("listing locked")
	client.deleteErr[6] = errors.New("already gone")
	client.deleteErr[9] = errors.New("server hiccup")

	executor, store, _ := setupExecutor(t, client, config)
	id := createRecord(t, store, 100)

	report, err := executor.Execute(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 7, report.SuccessCount)
	assert.Equal(t, 3, report.ErrorCount)
	assert.True(t, report.HasFailures())

	// Every listing was attempted despite the failures, in order.
	want := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, want, client.deleteCalls)

	require.Len(t, report.Failures, 3)
	assert.Equal(t, int64(3), report.Failures[0].ListingID)
	assert.Equal(t, int64(6), report.Failures[1].ListingID)
	assert.Equal(t, int64(9), report.Failures[2].ListingID)
	assert.Equal(t, "listing locked", report.Failures[0].Message)
	assert.Equal(t, int64(100), report.Failures[0].CategoryID)
}

func TestExecuteCategoryOrderAndCleanup(t *testing.T) {
	client := newFakeClient()
	client.listings[102] = []model.Listing{{ID: 1, Disabled: true}}
	client.listings[100] = []model.Listing{{ID: 2, Disabled: true}}

	executor, store, _ := setupExecutor(t, client, DefaultConfig())
	categories := []model.Category{
		{ID: 100, Name: "Games"},
		{ID: 102, Name: "Accounts"},
	}
	id := store.Create(categories, nil, false)
	require.NoError(t, store.AddChosen(id, 102))
	require.NoError(t, store.AddChosen(id, 100))

	report, err := executor.Execute(context.Background(), id)
	require.NoError(t, err)

	// Categories are swept in chosen-set insertion order, not universe order.
	assert.Equal(t, []int64{102, 100}, client.listingCalls)
	assert.Equal(t, 2, report.SuccessCount)

	// The record is consumed once the pass completes.
	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestExecuteListingFetchFailureContinues(t *testing.T) {
	client := newFakeClient()
	client.listingsErr[100] = errors.New("boom")
	client.listings[101] = []model.Listing{{ID: 5, Disabled: true}}

	executor, store, _ := setupExecutor(t, client, DefaultConfig())
	id := createRecord(t, store, 100, 101)

	report, err := executor.Execute(context.Background(), id)
	require.NoError(t, err)

	// The broken category is a single category-level failure; the rest of the
	// pass still runs.
	assert.Equal(t, []int64{100, 101}, client.listingCalls)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, int64(100), report.Failures[0].CategoryID)
	assert.Zero(t, report.Failures[0].ListingID)
	assert.Contains(t, report.Failures[0].Message, "boom")

	_, ok := store.Get(id)
	assert.False(t, ok, "record is consumed even after a partial pass")
}

func TestExecutePacing(t *testing.T) {
	client := newFakeClient()
	client.listings[100] = []model.Listing{
		{ID: 1, Disabled: true},
		{ID: 2, Disabled: true},
	}
	client.listings[101] = []model.Listing{
		{ID: 3, Disabled: true},
	}
	client.deleteErr[2] = errors.New("nope")

	executor, store, recorder := setupExecutor(t, client, DefaultConfig())
	id := createRecord(t, store, 100, 101)

	_, err := executor.Execute(context.Background(), id)
	require.NoError(t, err)

	// A listing delay follows each successful delete only; a category delay
	// follows every category, failures included.
	listingDelay := DefaultConfig().ListingDelay
	categoryDelay := DefaultConfig().CategoryDelay
	assert.Equal(t, []time.Duration{
		listingDelay,  // listing 1 deleted
		categoryDelay, // category 100 done (listing 2 failed, no delay)
		listingDelay,  // listing 3 deleted
		categoryDelay, // category 101 done
	}, recorder.delays)
}

func TestExecuteOnAttempt(t *testing.T) {
	client := newFakeClient()
	client.listings[100] = []model.Listing{
		{ID: 1, Disabled: true},
		{ID: 2, Disabled: true},
	}
	client.deleteErr[2] = errors.New("nope")

	executor, store, _ := setupExecutor(t, client, DefaultConfig())
	id := createRecord(t, store, 100)

	var attempts []int64
	var attemptErrs []error
	executor.OnAttempt = func(listing model.Listing, err error) {
		attempts = append(attempts, listing.ID)
		attemptErrs = append(attemptErrs, err)
	}

	_, err := executor.Execute(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, attempts)
	require.Len(t, attemptErrs, 2)
	assert.NoError(t, attemptErrs[0])
	assert.Error(t, attemptErrs[1])
}

func TestExecuteCancellation(t *testing.T) {
	client := newFakeClient()
	client.listings[100] = []model.Listing{{ID: 1, Disabled: true}}

	executor, store, _ := setupExecutor(t, client, DefaultConfig())
	id := createRecord(t, store, 100, 101)

	ctx, cancel := context.WithCancel(context.Background())
	executor.OnAttempt = func(model.Listing, error) { cancel() }

	_, err := executor.Execute(ctx, id)
	assert.ErrorIs(t, err, context.Canceled)

	// The aborted pass leaves the record in place for a later attempt.
	_, ok := store.Get(id)
	assert.True(t, ok)
	assert.Equal(t, []int64{100}, client.listingCalls)
}
