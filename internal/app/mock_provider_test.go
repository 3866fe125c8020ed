package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/provider"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}

func (m *mockProvider) GetAccount(ctx context.Context, name string) (domain.Account, error) {
	args := m.Called(ctx, name)
	acct, _ := args.Get(0).(domain.Account)
	return acct, args.Error(1)
}

func (m *mockProvider) ListLocations(ctx context.Context, account string, opts provider.ListOptions) ([]domain.Location, error) {
	args := m.Called(ctx, account, opts)
	locs, _ := args.Get(0).([]domain.Location)
	return locs, args.Error(1)
}

func (m *mockProvider) GetLocation(ctx context.Context, name string) (domain.Location, error) {
	args := m.Called(ctx, name)
	loc, _ := args.Get(0).(domain.Location)
	return loc, args.Error(1)
}

func (m *mockProvider) UpdateLocation(ctx context.Context, name string, patch domain.Record, updateMask []string) (domain.Location, error) {
	args := m.Called(ctx, name, patch, updateMask)
	loc, _ := args.Get(0).(domain.Location)
	return loc, args.Error(1)
}

func (m *mockProvider) ListReviews(ctx context.Context, location string, opts provider.ListOptions) ([]domain.Review, error) {
	args := m.Called(ctx, location, opts)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

func (m *mockProvider) ReplyToReview(ctx context.Context, review, comment string) (domain.Record, error) {
	args := m.Called(ctx, review, comment)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *mockProvider) GetPerformanceReport(ctx context.Context, location string, ranges []domain.DateRange, metrics []domain.MetricRequest) (domain.Record, error) {
	args := m.Called(ctx, location, ranges, metrics)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

var _ provider.BusinessProvider = (*mockProvider)(nil)
