// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/service"
)

// MockPricingConfigService is a testify mock of service.PricingConfigService.
type MockPricingConfigService struct {
	mock.Mock
}

// NewMockPricingConfigService creates a mock that asserts its expectations on cleanup.
func NewMockPricingConfigService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPricingConfigService {
	m := &MockPricingConfigService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func snapshotResult(args mock.Arguments, i int) *model.PricingSnapshot {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*model.PricingSnapshot)
}

func (m *MockPricingConfigService) Current() *model.PricingSnapshot {
	return snapshotResult(m.Called(), 0)
}

func (m *MockPricingConfigService) Load(ctx context.Context) (*model.PricingSnapshot, error) {
	args := m.Called(ctx)
	return snapshotResult(args, 0), args.Error(1)
}

func (m *MockPricingConfigService) Refresh(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockPricingConfigService) Replace(ctx context.Context, snap *model.PricingSnapshot, by string) (*model.PricingSnapshot, error) {
	args := m.Called(ctx, snap, by)
	return snapshotResult(args, 0), args.Error(1)
}

func (m *MockPricingConfigService) AddService(ctx context.Context, label string, price float64, by string) (string, *model.PricingSnapshot, error) {
	args := m.Called(ctx, label, price, by)
	return args.String(0), snapshotResult(args, 1), args.Error(2)
}

func (m *MockPricingConfigService) UpdateService(ctx context.Context, key string, update service.ServiceUpdate, by string) (*model.PricingSnapshot, error) {
	args := m.Called(ctx, key, update, by)
	return snapshotResult(args, 0), args.Error(1)
}

func (m *MockPricingConfigService) RemoveService(ctx context.Context, key, by string) (*model.PricingSnapshot, error) {
	args := m.Called(ctx, key, by)
	return snapshotResult(args, 0), args.Error(1)
}

func (m *MockPricingConfigService) SetCostPerArea(ctx context.Context, key string, cost *float64, by string) (*model.PricingSnapshot, error) {
	args := m.Called(ctx, key, cost, by)
	return snapshotResult(args, 0), args.Error(1)
}

func (m *MockPricingConfigService) History(ctx context.Context, limit int) ([]model.PricingSnapshot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricingSnapshot), args.Error(1)
}
