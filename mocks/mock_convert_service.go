package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfdigest/internal/cache"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
	"pdfdigest/internal/service"
)

// MockConvertService is a mock implementation of service.ConvertService.
type MockConvertService struct {
	mock.Mock
}

func (m *MockConvertService) Convert(ctx context.Context, input service.ConvertInput) (*domain.ConversionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionResult), args.Error(1)
}

func (m *MockConvertService) ExtractTables(ctx context.Context, input service.ConvertInput) (*domain.ConversionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversionResult), args.Error(1)
}

func (m *MockConvertService) InvalidateCache(ctx context.Context, processor string) (int, error) {
	args := m.Called(ctx, processor)
	return args.Int(0), args.Error(1)
}

func (m *MockConvertService) CacheStats(ctx context.Context) cache.Stats {
	args := m.Called(ctx)
	return args.Get(0).(cache.Stats)
}

func (m *MockConvertService) Converters() []port.ConverterInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]port.ConverterInfo)
}
