// Code generated manually. DO NOT EDIT.

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/baryc/quote-service/internal/domain/model"
)

// MockQuoteCalculator is a testify mock of service.QuoteCalculator.
type MockQuoteCalculator struct {
	mock.Mock
}

// NewMockQuoteCalculator creates a mock that asserts its expectations on cleanup.
func NewMockQuoteCalculator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockQuoteCalculator {
	m := &MockQuoteCalculator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockQuoteCalculator) Quote(in model.QuoteInput) model.PricingResult {
	args := m.Called(in)
	return args.Get(0).(model.PricingResult)
}

func (m *MockQuoteCalculator) CostBasis(in model.CostBasisInput) model.CostBasisResult {
	args := m.Called(in)
	return args.Get(0).(model.CostBasisResult)
}

func (m *MockQuoteCalculator) OrderTotals(in model.OrderInput) model.OrderTotals {
	args := m.Called(in)
	return args.Get(0).(model.OrderTotals)
}

func (m *MockQuoteCalculator) HourlyCost(in model.HourlyCostInput) model.HourlyCostResult {
	args := m.Called(in)
	return args.Get(0).(model.HourlyCostResult)
}

func (m *MockQuoteCalculator) Snapshot() *model.PricingSnapshot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.PricingSnapshot)
}

func (m *MockQuoteCalculator) InvalidateCache() {
	m.Called()
}
