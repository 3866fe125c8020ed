package provider

import (
	"context"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
)

// ListOptions controls paging of list calls.
type ListOptions struct {
	// PageSize is the number of records requested per page. Zero uses the
	// client default.
	PageSize int
}

// BusinessProvider is the Business Profile surface the Manager depends on.
// Names are full resource names such as "accounts/1/locations/2". Failed
// calls return *domain.APIError.
type BusinessProvider interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, name string) (domain.Account, error)

	ListLocations(ctx context.Context, account string, opts ListOptions) ([]domain.Location, error)
	GetLocation(ctx context.Context, name string) (domain.Location, error)
	UpdateLocation(ctx context.Context, name string, patch domain.Record, updateMask []string) (domain.Location, error)

	ListReviews(ctx context.Context, location string, opts ListOptions) ([]domain.Review, error)
	ReplyToReview(ctx context.Context, review, comment string) (domain.Record, error)

	GetPerformanceReport(ctx context.Context, location string, ranges []domain.DateRange, metrics []domain.MetricRequest) (domain.Record, error)
}
