package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockDocumentInspector is a mock implementation of port.DocumentInspector.
type MockDocumentInspector struct {
	mock.Mock
}

func (m *MockDocumentInspector) PageCount(data []byte) (int, error) {
	args := m.Called(data)
	return args.Int(0), args.Error(1)
}
