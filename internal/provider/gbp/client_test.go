package gbp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/provider"
	"github.com/ourdigital/gbp-toolkit/internal/rest"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Values url.Values
	Body   map[string]any
}

// fakeAPI records requests and answers from a route table keyed by
// "METHOD path?pageToken".
type fakeAPI struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	reqs   []recordedRequest
	routes map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{t: t, routes: map[string]func(w http.ResponseWriter){}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}, Values: r.URL.Query()}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		require.NoError(f.t, json.Unmarshal(data, &rec.Body))
	}
	f.mu.Lock()
	f.reqs = append(f.reqs, rec)
	f.mu.Unlock()

	key := r.Method + " " + r.URL.Path + "?" + r.URL.Query().Get("pageToken")
	h, ok := f.routes[key]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`)
		return
	}
	h(w)
}

func (f *fakeAPI) on(method, path, pageToken, body string) {
	f.routes[method+" "+path+"?"+pageToken] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeAPI) requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.reqs...)
}

// httpFactory builds services on a plain HTTP client, skipping OAuth.
type httpFactory struct {
	client *http.Client
}

func (h httpFactory) Service(ctx context.Context, cfg rest.Config, opts ...option.ClientOption) (*rest.Service, error) {
	return rest.NewService(ctx, cfg, append(opts, option.WithHTTPClient(h.client))...)
}

func (h httpFactory) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithHTTPClient(h.client)}
}

func newTestClient(t *testing.T, api *fakeAPI, opts Options) *Client {
	t.Helper()
	opts.BusinessEndpoint = api.srv.URL
	opts.PerformanceEndpoint = api.srv.URL
	opts.Logger = zerolog.Nop()
	c, err := Connect(context.Background(), httpFactory{client: api.srv.Client()}, opts)
	require.NoError(t, err)
	return c
}

func TestListAccounts_FollowsPageTokens(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts", "", `{"accounts":[{"name":"accounts/1","type":"PERSONAL"}],"nextPageToken":"p2"}`)
	api.on("GET", "/accounts", "p2", `{"accounts":[{"name":"accounts/2"}]}`)

	c := newTestClient(t, api, Options{})
	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "accounts/1", accounts[0].Name())
	assert.Equal(t, "accounts/2", accounts[1].Name())

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.NotContains(t, reqs[0].Query, "pageSize")
	assert.Equal(t, "p2", reqs[1].Query["pageToken"])
}

func TestListLocations_DefaultPageSize(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts/1/locations", "", `{"locations":[{"name":"accounts/1/locations/a"},{"name":"accounts/1/locations/b"}],"nextPageToken":"t2"}`)
	api.on("GET", "/accounts/1/locations", "t2", `{"locations":[{"name":"accounts/1/locations/c"}],"nextPageToken":"t3"}`)
	api.on("GET", "/accounts/1/locations", "t3", `{}`)

	c := newTestClient(t, api, Options{})
	locs, err := c.ListLocations(context.Background(), "accounts/1", provider.ListOptions{})
	require.NoError(t, err)

	var names []string
	for _, l := range locs {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"accounts/1/locations/a", "accounts/1/locations/b", "accounts/1/locations/c"}, names)

	reqs := api.requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "100", r.Query["pageSize"])
	}
}

func TestListReviews_PageSizes(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts/1/locations/a/reviews", "", `{"reviews":[{"name":"r1"}]}`)

	c := newTestClient(t, api, Options{})
	_, err := c.ListReviews(context.Background(), "accounts/1/locations/a", provider.ListOptions{})
	require.NoError(t, err)
	_, err = c.ListReviews(context.Background(), "accounts/1/locations/a", provider.ListOptions{PageSize: 10})
	require.NoError(t, err)

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "50", reqs[0].Query["pageSize"])
	assert.Equal(t, "10", reqs[1].Query["pageSize"])
}

func TestListReviews_EmptyIsNotNil(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts/1/locations/a/reviews", "", `{}`)

	c := newTestClient(t, api, Options{ReviewsPageSize: 5})
	reviews, err := c.ListReviews(context.Background(), "accounts/1/locations/a", provider.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
	assert.Equal(t, "5", api.requests()[0].Query["pageSize"])
}

func TestListLocations_ErrorMidway(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts/1/locations", "", `{"locations":[{"name":"a"}],"nextPageToken":"gone"}`)

	c := newTestClient(t, api, Options{})
	locs, err := c.ListLocations(context.Background(), "accounts/1", provider.ListOptions{})
	assert.Nil(t, locs)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Requested entity was not found.", apiErr.Message)
	assert.Contains(t, apiErr.Body, "NOT_FOUND")
}

func TestGetAccountAndLocation(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", "/accounts/1", "", `{"name":"accounts/1","accountName":"Joe"}`)
	api.on("GET", "/accounts/1/locations/a", "", `{"name":"accounts/1/locations/a","locationName":"Joe's Cafe"}`)

	c := newTestClient(t, api, Options{})
	acct, err := c.GetAccount(context.Background(), "accounts/1")
	require.NoError(t, err)
	assert.Equal(t, "Joe", acct.String("accountName"))

	loc, err := c.GetLocation(context.Background(), "accounts/1/locations/a")
	require.NoError(t, err)
	assert.Equal(t, "Joe's Cafe", loc.String("locationName"))

	_, err = c.GetLocation(context.Background(), "")
	assert.Error(t, err)
}

func TestUpdateLocation_SendsMask(t *testing.T) {
	api := newFakeAPI(t)
	api.on("PATCH", "/accounts/1/locations/a", "", `{"name":"accounts/1/locations/a","primaryPhone":"555-0100"}`)

	c := newTestClient(t, api, Options{})
	patch := domain.Record{"primaryPhone": "555-0100", "websiteUri": "https://joe.example"}
	loc, err := c.UpdateLocation(context.Background(), "accounts/1/locations/a", patch, []string{"primaryPhone", "websiteUri"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", loc.String("primaryPhone"))

	req := api.requests()[0]
	assert.Equal(t, "PATCH", req.Method)
	assert.Equal(t, "primaryPhone,websiteUri", req.Query["updateMask"])
	assert.Equal(t, "https://joe.example", req.Body["websiteUri"])
}

func TestUpdateLocation_NoMask(t *testing.T) {
	api := newFakeAPI(t)
	api.on("PATCH", "/accounts/1/locations/a", "", `{}`)

	c := newTestClient(t, api, Options{})
	_, err := c.UpdateLocation(context.Background(), "accounts/1/locations/a", domain.Record{"x": 1}, nil)
	require.NoError(t, err)
	assert.NotContains(t, api.requests()[0].Query, "updateMask")
}

func TestReplyToReview(t *testing.T) {
	api := newFakeAPI(t)
	api.on("PUT", "/accounts/1/locations/a/reviews/r1/reply", "", `{"comment":"Thanks!","updateTime":"2024-03-01T10:00:00Z"}`)

	c := newTestClient(t, api, Options{})
	reply, err := c.ReplyToReview(context.Background(), "accounts/1/locations/a/reviews/r1", "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", reply.String("comment"))

	req := api.requests()[0]
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, map[string]any{"comment": "Thanks!"}, req.Body)
}

const performancePath = "/v1/locations/42:fetchMultiDailyMetricsTimeSeries"

func TestGetPerformanceReport_Query(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", performancePath, "", `{"multiDailyMetricTimeSeries":[{"dailyMetricTimeSeries":[
		{"dailyMetric":"CALL_CLICKS","timeSeries":{"datedValues":[{"date":{"year":2024,"month":1,"day":1},"value":"7"}]}}
	]}]}`)

	c := newTestClient(t, api, Options{})
	ranges := []domain.DateRange{{
		StartDate: domain.Date{Year: 2024, Month: 1, Day: 1},
		EndDate:   domain.Date{Year: 2024, Month: 1, Day: 31},
	}}
	report, err := c.GetPerformanceReport(context.Background(), "accounts/1/locations/42", ranges, []domain.MetricRequest{{Metric: domain.MetricAll}})
	require.NoError(t, err)

	reqs := api.requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, performancePath, req.Path)
	assert.Nil(t, req.Body)
	assert.Equal(t, DailyMetrics, req.Values["dailyMetrics"])
	assert.Equal(t, "2024", req.Query["dailyRange.startDate.year"])
	assert.Equal(t, "1", req.Query["dailyRange.startDate.month"])
	assert.Equal(t, "1", req.Query["dailyRange.startDate.day"])
	assert.Equal(t, "2024", req.Query["dailyRange.endDate.year"])
	assert.Equal(t, "1", req.Query["dailyRange.endDate.month"])
	assert.Equal(t, "31", req.Query["dailyRange.endDate.day"])

	series, ok := report["multiDailyMetricTimeSeries"].([]any)
	require.True(t, ok)
	require.Len(t, series, 1)
	daily := domain.Record(series[0].(map[string]any))["dailyMetricTimeSeries"].([]any)
	assert.Equal(t, "CALL_CLICKS", daily[0].(map[string]any)["dailyMetric"])
}

func TestGetPerformanceReport_SelectedMetricsAndRanges(t *testing.T) {
	api := newFakeAPI(t)
	api.on("GET", performancePath, "", `{"multiDailyMetricTimeSeries":[{}]}`)

	c := newTestClient(t, api, Options{})
	ranges := []domain.DateRange{
		{StartDate: domain.Date{Year: 2024, Month: 1, Day: 1}, EndDate: domain.Date{Year: 2024, Month: 1, Day: 31}},
		{StartDate: domain.Date{Year: 2024, Month: 2, Day: 1}, EndDate: domain.Date{Year: 2024, Month: 2, Day: 29}},
	}
	metrics := []domain.MetricRequest{{Metric: "WEBSITE_CLICKS"}, {Metric: "CALL_CLICKS"}, {Metric: "WEBSITE_CLICKS"}}
	report, err := c.GetPerformanceReport(context.Background(), "locations/42", ranges, metrics)
	require.NoError(t, err)
	assert.Len(t, report["multiDailyMetricTimeSeries"], 2)

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"WEBSITE_CLICKS", "CALL_CLICKS"}, reqs[0].Values["dailyMetrics"])
	assert.Equal(t, "1", reqs[0].Query["dailyRange.endDate.month"])
	assert.Equal(t, "2", reqs[1].Query["dailyRange.endDate.month"])
	assert.Equal(t, "29", reqs[1].Query["dailyRange.endDate.day"])
}

func TestGetPerformanceReport_NotFound(t *testing.T) {
	api := newFakeAPI(t)

	c := newTestClient(t, api, Options{})
	ranges := []domain.DateRange{{StartDate: domain.Date{Year: 2024, Month: 1, Day: 1}, EndDate: domain.Date{Year: 2024, Month: 1, Day: 2}}}
	_, err := c.GetPerformanceReport(context.Background(), "locations/99", ranges, []domain.MetricRequest{{Metric: domain.MetricAll}})

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Requested entity was not found.", apiErr.Message)
}

func TestGetPerformanceReport_InvalidArguments(t *testing.T) {
	api := newFakeAPI(t)
	c := newTestClient(t, api, Options{})
	ctx := context.Background()
	ranges := []domain.DateRange{{StartDate: domain.Date{Year: 2024, Month: 1, Day: 1}, EndDate: domain.Date{Year: 2024, Month: 1, Day: 2}}}
	all := []domain.MetricRequest{{Metric: domain.MetricAll}}

	_, err := c.GetPerformanceReport(ctx, "", ranges, all)
	assert.Error(t, err)
	_, err = c.GetPerformanceReport(ctx, "locations/42", nil, all)
	assert.Error(t, err)
	_, err = c.GetPerformanceReport(ctx, "locations/42", ranges, nil)
	assert.Error(t, err)
	assert.Empty(t, api.requests())
}

func TestPerformanceLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"accounts/1/locations/42", "locations/42", false},
		{"locations/42", "locations/42", false},
		{"42", "locations/42", false},
		{"/locations/42/", "locations/42", false},
		{"accounts/1/locations/", "", true},
		{"accounts/1", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := performanceLocation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandMetrics(t *testing.T) {
	got := expandMetrics([]domain.MetricRequest{{Metric: "CALL_CLICKS"}, {Metric: "all"}, {Metric: ""}})
	assert.Len(t, got, len(DailyMetrics))
	assert.Equal(t, "CALL_CLICKS", got[0])
	assert.Empty(t, expandMetrics(nil))
}

func TestClient_NotAuthenticated(t *testing.T) {
	var zero Client
	var nilClient *Client
	ctx := context.Background()

	calls := map[string]func(c *Client) error{
		"ListAccounts": func(c *Client) error { _, err := c.ListAccounts(ctx); return err },
		"GetAccount":   func(c *Client) error { _, err := c.GetAccount(ctx, "accounts/1"); return err },
		"ListLocations": func(c *Client) error {
			_, err := c.ListLocations(ctx, "accounts/1", provider.ListOptions{})
			return err
		},
		"UpdateLocation": func(c *Client) error {
			_, err := c.UpdateLocation(ctx, "l", domain.Record{}, nil)
			return err
		},
		"ListReviews": func(c *Client) error {
			_, err := c.ListReviews(ctx, "l", provider.ListOptions{})
			return err
		},
		"ReplyToReview": func(c *Client) error { _, err := c.ReplyToReview(ctx, "r", "x"); return err },
		"GetPerformanceReport": func(c *Client) error {
			_, err := c.GetPerformanceReport(ctx, "l", nil, nil)
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			for _, c := range []*Client{&zero, nilClient} {
				err := call(c)
				assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
				assert.Equal(t, domain.KindAPI, domain.KindOf(err))
			}
		})
	}
	assert.False(t, zero.IsAuthenticated())
}

func TestConnect_NilFactory(t *testing.T) {
	_, err := Connect(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
