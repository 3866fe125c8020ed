package gbp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/businessprofileperformance/v1"
	"google.golang.org/api/option"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/provider"
	"github.com/ourdigital/gbp-toolkit/internal/rest"
)

const (
	BusinessAPI     = "mybusiness"
	BusinessVersion = "v4"

	DefaultLocationsPageSize = 100
	DefaultReviewsPageSize   = 50
)

// ServiceFactory creates authenticated service handles. *auth.Credentials
// satisfies it. Service builds the raw REST handle for the v4 API, and
// ClientOptions authenticates the generated performance client.
type ServiceFactory interface {
	Service(ctx context.Context, cfg rest.Config, opts ...option.ClientOption) (*rest.Service, error)
	ClientOptions() []option.ClientOption
}

// Options configures a Client. Zero page sizes use the defaults above.
type Options struct {
	BusinessEndpoint    string
	PerformanceEndpoint string
	LocationsPageSize   int
	ReviewsPageSize     int
	RequestsPerSecond   float64
	Burst               int
	Logger              zerolog.Logger
	ClientOptions       []option.ClientOption
}

// Client implements provider.BusinessProvider over the Business Profile
// APIs: mybusiness v4 through rest.Service, and the performance API through
// its generated client. The zero Client is unauthenticated and fails every
// call.
type Client struct {
	business          *rest.Service
	performance       *businessprofileperformance.Service
	perfLimiter       *rate.Limiter
	locationsPageSize int
	reviewsPageSize   int
	logger            zerolog.Logger
}

// Connect creates the business and performance services from factory.
func Connect(ctx context.Context, factory ServiceFactory, opts Options) (*Client, error) {
	if factory == nil {
		return nil, domain.NotAuthenticatedAPIError()
	}
	business, err := factory.Service(ctx, opts.restConfig(BusinessAPI, BusinessVersion, opts.BusinessEndpoint), opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create business service: %w", err)
	}
	perfOpts := slices.Concat(factory.ClientOptions(), opts.ClientOptions)
	if opts.PerformanceEndpoint != "" {
		perfOpts = append(perfOpts, option.WithEndpoint(strings.TrimSuffix(opts.PerformanceEndpoint, "/")+"/"))
	}
	performance, err := businessprofileperformance.NewService(ctx, perfOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create performance service: %w", err)
	}
	return New(business, performance, opts), nil
}

// New wraps existing services.
func New(business *rest.Service, performance *businessprofileperformance.Service, opts Options) *Client {
	c := &Client{
		business:          business,
		performance:       performance,
		perfLimiter:       rest.NewLimiter(opts.RequestsPerSecond, opts.Burst),
		locationsPageSize: opts.LocationsPageSize,
		reviewsPageSize:   opts.ReviewsPageSize,
		logger:            opts.Logger.With().Str("component", "gbp").Logger(),
	}
	if c.locationsPageSize <= 0 {
		c.locationsPageSize = DefaultLocationsPageSize
	}
	if c.reviewsPageSize <= 0 {
		c.reviewsPageSize = DefaultReviewsPageSize
	}
	return c
}

func (o Options) restConfig(name, version, endpoint string) rest.Config {
	return rest.Config{
		Name:              name,
		Version:           version,
		Endpoint:          endpoint,
		RequestsPerSecond: o.RequestsPerSecond,
		Burst:             o.Burst,
		Logger:            o.Logger,
	}
}

// IsAuthenticated reports whether the business service is available.
func (c *Client) IsAuthenticated() bool {
	return c != nil && c.business != nil
}

func (c *Client) businessService() (*rest.Service, error) {
	if c == nil || c.business == nil {
		return nil, domain.NotAuthenticatedAPIError()
	}
	return c.business, nil
}

func (c *Client) performanceService() (*businessprofileperformance.Service, error) {
	if c == nil || c.performance == nil {
		return nil, domain.NotAuthenticatedAPIError()
	}
	return c.performance, nil
}

// ListAccounts returns every account the credential can access.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	accounts, err := drain(pages(ctx, svc, "accounts", "accounts", 0))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(accounts)).Msg("listed accounts")
	return accounts, nil
}

// GetAccount returns one account, e.g. "accounts/123".
func (c *Client) GetAccount(ctx context.Context, name string) (domain.Account, error) {
	return c.get(ctx, name)
}

// ListLocations returns every location of account, following page tokens.
func (c *Client) ListLocations(ctx context.Context, account string, opts provider.ListOptions) ([]domain.Location, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	if account == "" {
		return nil, fmt.Errorf("failed to list locations: account name is required")
	}
	size := opts.PageSize
	if size <= 0 {
		size = c.locationsPageSize
	}
	locations, err := drain(pages(ctx, svc, account+"/locations", "locations", size))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("account", account).Int("count", len(locations)).Msg("listed locations")
	return locations, nil
}

// GetLocation returns one location, e.g. "accounts/123/locations/456".
func (c *Client) GetLocation(ctx context.Context, name string) (domain.Location, error) {
	return c.get(ctx, name)
}

// UpdateLocation patches the fields of name listed in updateMask. An empty
// mask lets the server infer the fields from patch.
func (c *Client) UpdateLocation(ctx context.Context, name string, patch domain.Record, updateMask []string) (domain.Location, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("failed to update location: name is required")
	}
	var q url.Values
	if len(updateMask) > 0 {
		q = url.Values{"updateMask": {strings.Join(updateMask, ",")}}
	}
	var out domain.Location
	if err := svc.Do(ctx, http.MethodPatch, name, q, patch, &out); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("location", name).Strs("mask", updateMask).Msg("updated location")
	return out, nil
}

// ListReviews returns every review of location, following page tokens.
func (c *Client) ListReviews(ctx context.Context, location string, opts provider.ListOptions) ([]domain.Review, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	if location == "" {
		return nil, fmt.Errorf("failed to list reviews: location name is required")
	}
	size := opts.PageSize
	if size <= 0 {
		size = c.reviewsPageSize
	}
	reviews, err := drain(pages(ctx, svc, location+"/reviews", "reviews", size))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("location", location).Int("count", len(reviews)).Msg("listed reviews")
	return reviews, nil
}

// ReplyToReview creates or replaces the owner reply on review.
func (c *Client) ReplyToReview(ctx context.Context, review, comment string) (domain.Record, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	if review == "" {
		return nil, fmt.Errorf("failed to reply to review: review name is required")
	}
	var out domain.Record
	if err := svc.Do(ctx, http.MethodPut, review+"/reply", nil, map[string]string{"comment": comment}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, name string) (domain.Record, error) {
	svc, err := c.businessService()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("failed to get resource: name is required")
	}
	var out domain.Record
	if err := svc.Do(ctx, http.MethodGet, name, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ provider.BusinessProvider = (*Client)(nil)
