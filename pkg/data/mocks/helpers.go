package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockDatasetSourceForTest creates a new mock DatasetSource for testing
func NewMockDatasetSourceForTest(t *testing.T) *MockDatasetSource {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockDatasetSource(ctrl)
}

// NewMockTransactionSourceForTest creates a new mock TransactionSource for testing
func NewMockTransactionSourceForTest(t *testing.T) *MockTransactionSource {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockTransactionSource(ctrl)
}
