package companies

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-pulse/internal/types"
)

type fakeStore struct {
	companies []types.Company
	listErr   error
	updateErr error
	updates   int
}

func (f *fakeStore) ListCompanies(_ context.Context) ([]types.Company, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.Company, len(f.companies))
	copy(out, f.companies)
	return out, nil
}

func (f *fakeStore) CreateCompany(_ context.Context, c *types.Company) error {
	var maxID int64
	for _, existing := range f.companies {
		maxID = max(maxID, existing.ID)
	}
	c.ID = maxID + 1
	f.companies = append(f.companies, *c)
	return nil
}

func (f *fakeStore) UpdateCompany(_ context.Context, c *types.Company) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.companies {
		if f.companies[i].ID == c.ID {
			f.companies[i] = *c
			return nil
		}
	}
	return errors.New("not found")
}

func strPtr(s string) *string { return &s }

func seededStore() *fakeStore {
	return &fakeStore{companies: []types.Company{
		{ID: 1, Name: "Apple", Aliases: []string{"Apple"}, Ticker: strPtr("AAPL")},
		{ID: 2, Name: "Microsoft", Aliases: []string{"MSFT Corp"}, Ticker: strPtr("MSFT")},
		{ID: 3, Name: "Alphabet", Aliases: []string{"Google"}, Ticker: strPtr("GOOGL")},
	}}
}

func TestResolve_ExactMatchAfterNormalization(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.Resolve(context.Background(), "Apple Inc.")
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)

	assert.True(t, res.IsValid)
	assert.Equal(t, "Apple", res.CanonicalName)
	assert.Equal(t, int64(1), res.Matches[0].Company.ID)
	assert.Equal(t, 1.0, res.Matches[0].Confidence)
}

func TestResolve_WeakMatchKeepsNormalizedName(t *testing.T) {
	store := &fakeStore{companies: []types.Company{{ID: 1, Name: "Metallica Records"}}}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), "Meta")
	require.NoError(t, err)
	assert.Equal(t, "Meta", res.CanonicalName)
	for _, m := range res.Matches {
		assert.LessOrEqual(t, m.Confidence, AcceptConfidence)
	}

	created, err := r.FindOrCreate(context.Background(), "Meta", nil)
	require.NoError(t, err)
	assert.Equal(t, res.CanonicalName, created.Name)
	assert.Equal(t, int64(2), created.ID)
}

func TestResolve_MatchTypes(t *testing.T) {
	tests := []struct {
		input      string
		companyID  int64
		confidence float64
		matchType  string
	}{
		{"Microsoft", 2, ExactConfidence, types.MatchTypeExact},
		{"msft", 2, TickerConfidence, types.MatchTypeTicker},
		{"Google", 3, AliasConfidence, types.MatchTypeAlias},
	}

	r := NewResolver(seededStore())
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotEmpty(t, res.Matches)

			best := res.Best()
			assert.Equal(t, tt.companyID, best.Company.ID)
			assert.Equal(t, tt.confidence, best.Confidence)
			assert.Equal(t, tt.matchType, best.MatchType)
		})
	}
}

func TestResolve_SortedAndFiltered(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.Resolve(context.Background(), "Microsft")
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)

	assert.Equal(t, types.MatchTypeFuzzy, res.Matches[0].MatchType)
	for i, m := range res.Matches {
		assert.Greater(t, m.Confidence, MinMatchConfidence)
		if i > 0 {
			assert.LessOrEqual(t, m.Confidence, res.Matches[i-1].Confidence)
		}
	}
}

func TestResolve_Stable(t *testing.T) {
	r := NewResolver(seededStore())

	first, err := r.Resolve(context.Background(), "Apple")
	require.NoError(t, err)
	for range 5 {
		again, err := r.Resolve(context.Background(), "Apple")
		require.NoError(t, err)
		assert.Equal(t, first.Best().Company.ID, again.Best().Company.ID)
		assert.Equal(t, first.CanonicalName, again.CanonicalName)
	}
}

func TestResolve_InvalidInput(t *testing.T) {
	r := NewResolver(seededStore())

	res, err := r.Resolve(context.Background(), "9")
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{ReasonTooShort, ReasonNumeric}, verr.Reasons)
	assert.False(t, res.IsValid)
	assert.Empty(t, res.Matches)
}

func TestResolve_StoreFailure(t *testing.T) {
	r := NewResolver(&fakeStore{listErr: errors.New("connection refused")})

	_, err := r.Resolve(context.Background(), "Apple")
	require.Error(t, err)

	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "list", serr.Op)
}

func TestFindOrCreate_ReusesConfidentMatch(t *testing.T) {
	store := seededStore()
	r := NewResolver(store)

	c, err := r.FindOrCreate(context.Background(), "Microsft", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)
	assert.Contains(t, c.Aliases, "Microsft")
	assert.Len(t, store.companies, 3)
}

func TestFindOrCreate_AliasUpdateFailureIsIgnored(t *testing.T) {
	store := seededStore()
	store.updateErr = errors.New("read-only")
	r := NewResolver(store)

	c, err := r.FindOrCreate(context.Background(), "Apple Inc.", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, 1, store.updates)
}

func TestFindOrCreate_CreatesNewCompany(t *testing.T) {
	store := seededStore()
	r := NewResolver(store)

	c, err := r.FindOrCreate(context.Background(), "Nvidia Corporation", strPtr("nvda"))
	require.NoError(t, err)

	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, "Nvidia", c.Name)
	assert.Equal(t, "NVDA", c.TickerValue())
	assert.Equal(t, []string{"Nvidia Corporation"}, c.Aliases)
}

func TestFindOrCreate_NoAliasWhenAlreadyNormalized(t *testing.T) {
	r := NewResolver(&fakeStore{})

	c, err := r.FindOrCreate(context.Background(), "Stripe", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Empty(t, c.Aliases)
	assert.Nil(t, c.Ticker)
}

func TestFindOrCreate_Invalid(t *testing.T) {
	r := NewResolver(&fakeStore{})

	_, err := r.FindOrCreate(context.Background(), "", nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{ReasonEmpty}, verr.Reasons)
}
