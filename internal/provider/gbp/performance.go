package gbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/businessprofileperformance/v1"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/rest"
)

// DailyMetrics lists every metric the performance API reports. A
// domain.MetricAll selector expands to this list.
var DailyMetrics = []string{
	"BUSINESS_IMPRESSIONS_DESKTOP_MAPS",
	"BUSINESS_IMPRESSIONS_DESKTOP_SEARCH",
	"BUSINESS_IMPRESSIONS_MOBILE_MAPS",
	"BUSINESS_IMPRESSIONS_MOBILE_SEARCH",
	"BUSINESS_CONVERSATIONS",
	"BUSINESS_DIRECTION_REQUESTS",
	"CALL_CLICKS",
	"WEBSITE_CLICKS",
	"BUSINESS_BOOKINGS",
	"BUSINESS_FOOD_ORDERS",
	"BUSINESS_FOOD_MENU_CLICKS",
}

// GetPerformanceReport fetches daily metric time series for location. Each
// date range is fetched separately and the series are concatenated in range
// order under "multiDailyMetricTimeSeries".
func (c *Client) GetPerformanceReport(ctx context.Context, location string, ranges []domain.DateRange, metrics []domain.MetricRequest) (domain.Record, error) {
	svc, err := c.performanceService()
	if err != nil {
		return nil, err
	}
	name, err := performanceLocation(location)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("failed to fetch performance of %s: a date range is required", location)
	}
	daily := expandMetrics(metrics)
	if len(daily) == 0 {
		return nil, fmt.Errorf("failed to fetch performance of %s: a metric is required", location)
	}

	series := []*businessprofileperformance.MultiDailyMetricTimeSeries{}
	for _, r := range ranges {
		if c.perfLimiter != nil {
			if err := c.perfLimiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
			}
		}
		resp, err := svc.Locations.FetchMultiDailyMetricsTimeSeries(name).
			DailyMetrics(daily...).
			DailyRangeStartDateYear(int64(r.StartDate.Year)).
			DailyRangeStartDateMonth(int64(r.StartDate.Month)).
			DailyRangeStartDateDay(int64(r.StartDate.Day)).
			DailyRangeEndDateYear(int64(r.EndDate.Year)).
			DailyRangeEndDateMonth(int64(r.EndDate.Month)).
			DailyRangeEndDateDay(int64(r.EndDate.Day)).
			Context(ctx).
			Do()
		if err != nil {
			return nil, performanceError(name, err)
		}
		series = append(series, resp.MultiDailyMetricTimeSeries...)
	}

	data, err := json.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("failed to encode performance of %s: %w", name, err)
	}
	var decoded []any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode performance of %s: %w", name, err)
	}
	c.logger.Debug().
		Str("location", name).
		Int("ranges", len(ranges)).
		Int("series", len(series)).
		Msg("fetched performance")
	return domain.Record{"multiDailyMetricTimeSeries": decoded}, nil
}

// performanceLocation converts a location name to the "locations/{id}" form
// the performance API expects. "accounts/1/locations/42", "locations/42" and
// "42" all map to "locations/42".
func performanceLocation(name string) (string, error) {
	name = strings.Trim(name, "/")
	if name == "" {
		return "", fmt.Errorf("failed to fetch performance: location name is required")
	}
	if i := strings.LastIndex(name, "locations/"); i >= 0 {
		if id := name[i+len("locations/"):]; id != "" && !strings.Contains(id, "/") {
			return "locations/" + id, nil
		}
		return "", fmt.Errorf("failed to fetch performance: invalid location name %q", name)
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("failed to fetch performance: invalid location name %q", name)
	}
	return "locations/" + name, nil
}

// expandMetrics turns metric selectors into DailyMetric values, without
// duplicates and in first-seen order.
func expandMetrics(reqs []domain.MetricRequest) []string {
	seen := map[string]bool{}
	var out []string
	add := func(m string) {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, r := range reqs {
		if strings.EqualFold(r.Metric, domain.MetricAll) {
			for _, m := range DailyMetrics {
				add(m)
			}
			continue
		}
		add(r.Metric)
	}
	return out
}

func performanceError(location string, err error) error {
	err = rest.NormalizeError(err)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &domain.APIError{Message: fmt.Sprintf("GET %s:fetchMultiDailyMetricsTimeSeries: %v", location, err), Err: err}
}
