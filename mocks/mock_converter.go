package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfdigest/internal/port"
)

// MockConverter is a mock implementation of port.Converter.
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Run(ctx context.Context, input port.ConvertInput) (*port.RawOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RawOutput), args.Error(1)
}

func (m *MockConverter) Info() port.ConverterInfo {
	args := m.Called()
	return args.Get(0).(port.ConverterInfo)
}
