//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewsQueryRequest_Validation(t *testing.T) {
	tooHigh := 1.5
	ok := 0.5

	tests := []struct {
		name    string
		request NewsQueryRequest
		wantErr bool
		errMsg  string
	}{
		{"valid request", NewsQueryRequest{Company: "Apple", MaxArticles: 20}, false, ""},
		{"valid with relevance", NewsQueryRequest{Company: "Apple", MinRelevance: &ok}, false, ""},
		{"missing company", NewsQueryRequest{MaxArticles: 10}, true, "required"},
		{"company too short", NewsQueryRequest{Company: "A"}, true, "min"},
		{"too many articles", NewsQueryRequest{Company: "Apple", MaxArticles: 500}, true, "max"},
		{"relevance out of range", NewsQueryRequest{Company: "Apple", MinRelevance: &tooHigh}, true, "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateContentRequest_Validation(t *testing.T) {
	valid := GenerateContentRequest{Platforms: []Platform{PlatformTwitter, PlatformLinkedIn}}
	assert.NoError(t, valid.Validate())

	empty := GenerateContentRequest{}
	assert.Error(t, empty.Validate())

	unknown := GenerateContentRequest{Platforms: []Platform{"myspace"}}
	err := unknown.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestSocialRequest_Validation(t *testing.T) {
	req := SocialRequest{
		CompanyName: "Apple",
		Highlights:  []Highlight{{Text: "Apple reported record revenue", Importance: 4, Category: CategoryFinancial}},
		Platforms:   []Platform{PlatformTwitter},
	}
	assert.NoError(t, req.Validate())

	req.ArticleURL = "not a url"
	assert.Error(t, req.Validate())
}

func TestResolveCompanyRequest_Validation(t *testing.T) {
	assert.NoError(t, (&ResolveCompanyRequest{Name: "Apple Inc.", Ticker: "AAPL"}).Validate())
	assert.Error(t, (&ResolveCompanyRequest{}).Validate())
	assert.Error(t, (&ResolveCompanyRequest{Name: "Apple", Ticker: "AA-PL"}).Validate())
}
