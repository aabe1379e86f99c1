package companies

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/company-pulse/internal/types"
)

// Store is the persistence the resolver needs.
type Store interface {
	ListCompanies(ctx context.Context) ([]types.Company, error)
	CreateCompany(ctx context.Context, c *types.Company) error
	UpdateCompany(ctx context.Context, c *types.Company) error
}

// Resolution is the outcome of resolving a free-text company name.
type Resolution struct {
	Input            string               `json:"input"`
	CanonicalName    string               `json:"canonical_name"`
	Matches          []types.CompanyMatch `json:"matches"`
	IsValid          bool                 `json:"is_valid"`
	ValidationErrors []string             `json:"validation_errors,omitempty"`
}

// Best returns the highest-confidence match, or nil when there is none.
func (r *Resolution) Best() *types.CompanyMatch {
	if r == nil || len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// Resolver maps free-text names to canonical companies.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve validates and normalizes raw, then scores it against every known company.
// Invalid input returns the resolution together with a *ValidationError.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	res := &Resolution{Input: raw}

	if reasons := ValidateName(raw); len(reasons) > 0 {
		res.ValidationErrors = reasons
		return res, &ValidationError{Input: raw, Reasons: reasons}
	}

	res.IsValid = true
	res.CanonicalName = Normalize(raw)

	known, err := r.store.ListCompanies(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Cause: err}
	}

	res.Matches = MatchCompanies(raw, known)
	if best := res.Best(); best != nil && best.Confidence > AcceptConfidence {
		res.CanonicalName = best.Company.Name
	}
	return res, nil
}

// FindOrCreate returns the best existing match above AcceptConfidence, or
// creates a new company named after the normalized input.
func (r *Resolver) FindOrCreate(ctx context.Context, name string, ticker *string) (*types.Company, error) {
	res, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(name)
	if best := res.Best(); best != nil && best.Confidence > AcceptConfidence {
		company := best.Company
		if raw != company.Name && !company.HasAlias(raw) {
			company.Aliases = append(company.Aliases, raw)
			if err := r.store.UpdateCompany(ctx, &company); err != nil {
				log.Printf("[RESOLVER] Failed to record alias %q for company %d: %v", raw, company.ID, err)
			}
		}
		return &company, nil
	}

	normalized := Normalize(raw)
	company := &types.Company{Name: normalized}
	if ticker != nil && strings.TrimSpace(*ticker) != "" {
		t := strings.ToUpper(strings.TrimSpace(*ticker))
		company.Ticker = &t
	}
	if raw != normalized {
		company.Aliases = []string{raw}
	}

	if err := r.store.CreateCompany(ctx, company); err != nil {
		return nil, &StoreError{Op: "create", Cause: err}
	}
	log.Printf("[RESOLVER] Created company %d %q from input %q", company.ID, company.Name, raw)
	return company, nil
}
