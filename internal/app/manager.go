package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/provider"
)

const (
	DefaultRecentDays   = 30
	DefaultInsightsDays = 30

	unknownAccountType = "UNKNOWN"
)

// Manager composes provider calls into the higher-level Business Profile
// operations: cross-account listing, review triage and bulk replies, contact
// and hours updates, insights and listing validation.
type Manager struct {
	provider          provider.BusinessProvider
	logger            zerolog.Logger
	now               func() time.Time
	locationsPageSize int
	reviewsPageSize   int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces time.Now, for reproducible review cutoffs and insight
// date ranges.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithPageSizes sets the page sizes used when listing locations and reviews.
// Zero keeps the provider default.
func WithPageSizes(locations, reviews int) ManagerOption {
	return func(m *Manager) {
		m.locationsPageSize = locations
		m.reviewsPageSize = reviews
	}
}

// NewManager returns a Manager over p. The logger is tagged with the
// component name.
func NewManager(p provider.BusinessProvider, logger zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider: p,
		logger:   logger.With().Str("component", "manager").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetAllLocations lists the locations of every account in account order,
// stamping each with the owning account's name and type.
func (m *Manager) GetAllLocations(ctx context.Context) ([]domain.Location, error) {
	accounts, err := m.provider.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	all := []domain.Location{}
	for _, acct := range accounts {
		name := acct.Name()
		locs, err := m.provider.ListLocations(ctx, name, provider.ListOptions{PageSize: m.locationsPageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list locations for %s: %w", name, err)
		}

		acctType := acct.String("type")
		if acctType == "" {
			acctType = unknownAccountType
		}
		for i := range locs {
			if locs[i] == nil {
				locs[i] = domain.Location{}
			}
			locs[i][domain.AccountNameKey] = name
			locs[i][domain.AccountTypeKey] = acctType
		}
		all = append(all, locs...)
	}
	m.logger.Debug().Int("accounts", len(accounts)).Int("locations", len(all)).Msg("listed all locations")
	return all, nil
}

// FindLocationByName returns the first location whose locationName matches
// name case-insensitively.
func (m *Manager) FindLocationByName(ctx context.Context, name string) (domain.Location, bool, error) {
	locs, err := m.GetAllLocations(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, loc := range locs {
		if strings.EqualFold(loc.String("locationName"), name) {
			return loc, true, nil
		}
	}
	return nil, false, nil
}

// UpdateBusinessHours replaces the regular hours of location.
func (m *Manager) UpdateBusinessHours(ctx context.Context, location string, hours domain.Record) (domain.Location, error) {
	return m.provider.UpdateLocation(ctx, location, domain.Record{"regularHours": hours}, []string{"regularHours"})
}

// UpdateContactInfo patches only the contact fields that are set.
func (m *Manager) UpdateContactInfo(ctx context.Context, location string, info domain.ContactInfo) (domain.Location, error) {
	patch := domain.Record{}
	var mask []string
	if info.Phone != "" {
		patch["primaryPhone"] = info.Phone
		mask = append(mask, "primaryPhone")
	}
	if info.Website != "" {
		patch["websiteUri"] = info.Website
		mask = append(mask, "websiteUri")
	}
	if len(mask) == 0 {
		return nil, &domain.APIError{
			Message: "no contact information provided to update",
			Err:     domain.ErrNoFieldsProvided,
		}
	}
	return m.provider.UpdateLocation(ctx, location, patch, mask)
}

// ListReviews returns every review of location.
func (m *Manager) ListReviews(ctx context.Context, location string) ([]domain.Review, error) {
	return m.provider.ListReviews(ctx, location, provider.ListOptions{PageSize: m.reviewsPageSize})
}

// GetRecentReviews returns the reviews created within the last days days.
// Reviews without a parsable createTime are skipped.
func (m *Manager) GetRecentReviews(ctx context.Context, location string, days int) ([]domain.Review, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	reviews, err := m.ListReviews(ctx, location)
	if err != nil {
		return nil, err
	}

	cutoff := m.now().Add(-time.Duration(days) * 24 * time.Hour)
	recent := []domain.Review{}
	for _, r := range reviews {
		created, ok := domain.CreateTime(r)
		if !ok {
			m.logger.Debug().Str("review", r.Name()).Msg("skipping review without valid createTime")
			continue
		}
		if created.After(cutoff) {
			recent = append(recent, r)
		}
	}
	return recent, nil
}

// GetUnansweredReviews returns the reviews that have no owner reply.
func (m *Manager) GetUnansweredReviews(ctx context.Context, location string) ([]domain.Review, error) {
	reviews, err := m.ListReviews(ctx, location)
	if err != nil {
		return nil, err
	}
	return domain.Unanswered(reviews), nil
}

// BulkReplyToReviews replies to every unanswered review of location with
// template, one at a time. A failed reply is recorded in its result and the
// remaining reviews are still processed. If ctx is cancelled the results so
// far are returned with ctx.Err().
func (m *Manager) BulkReplyToReviews(ctx context.Context, location, template string) ([]domain.ReplyResult, error) {
	if template == "" {
		template = domain.DefaultReplyTemplate
	}
	pending, err := m.GetUnansweredReviews(ctx, location)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ReplyResult, 0, len(pending))
	failed := 0
	for _, r := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		name := r.Name()
		reply, err := m.provider.ReplyToReview(ctx, name, template)
		if err != nil {
			failed++
			m.logger.Warn().Err(err).Str("review", name).Msg("reply failed")
			results = append(results, domain.ReplyResult{
				ReviewName: name,
				Status:     domain.ReplyFailed,
				Error:      err.Error(),
			})
			continue
		}
		results = append(results, domain.ReplyResult{
			ReviewName: name,
			Status:     domain.ReplySuccess,
			Result:     reply,
		})
	}
	m.logger.Info().
		Str("location", location).
		Int("replied", len(results)-failed).
		Int("failed", failed).
		Msg("bulk reply finished")
	return results, nil
}

// GetLocationInsights fetches all metrics for the last days days. An API
// failure is returned inside the Insights value rather than as an error.
func (m *Manager) GetLocationInsights(ctx context.Context, location string, days int) (*domain.Insights, error) {
	if days <= 0 {
		days = DefaultInsightsDays
	}
	end := m.now()
	start := end.AddDate(0, 0, -days)
	ranges := []domain.DateRange{{
		StartDate: domain.DateOf(start),
		EndDate:   domain.DateOf(end),
	}}
	metrics := []domain.MetricRequest{{Metric: domain.MetricAll}}

	report, err := m.provider.GetPerformanceReport(ctx, location, ranges, metrics)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			m.logger.Warn().Err(err).Str("location", location).Msg("insights unavailable")
			return &domain.Insights{Error: "Unable to fetch insights: " + apiErr.Message}, nil
		}
		return nil, err
	}
	return &domain.Insights{Report: report}, nil
}

var (
	requiredFields = []string{"locationName", "primaryCategory", "address"}
	addressFields  = []string{"addressLines", "locality", "administrativeArea", "postalCode"}
)

// ValidateLocationData lists the missing fields of loc in a fixed order. An
// empty result means the listing is complete.
func (m *Manager) ValidateLocationData(loc domain.Location) []string {
	issues := []string{}
	for _, f := range requiredFields {
		if !loc.Present(f) {
			issues = append(issues, "Missing required field: "+f)
		}
	}
	addr := loc.Sub("address")
	for _, f := range addressFields {
		if !addr.Present(f) {
			issues = append(issues, "Missing address field: "+f)
		}
	}
	if !loc.Present("primaryPhone") {
		issues = append(issues, "Missing primary phone number")
	}
	if !loc.Present("regularHours") {
		issues = append(issues, "Missing business hours")
	}
	return issues
}

// ReviewSummary counts the reviews of location and averages their star
// ratings. Unrated reviews do not count towards the average.
func (m *Manager) ReviewSummary(ctx context.Context, location string) (*domain.ReviewStats, error) {
	reviews, err := m.ListReviews(ctx, location)
	if err != nil {
		return nil, err
	}
	stats := &domain.ReviewStats{Total: len(reviews)}
	sum := 0
	for _, r := range reviews {
		if v := domain.StarValue(r); v > 0 {
			stats.Rated++
			sum += v
		}
		if domain.IsAnswered(r) {
			stats.Replied++
		}
	}
	if stats.Rated > 0 {
		stats.Average = float64(sum) / float64(stats.Rated)
	}
	return stats, nil
}
