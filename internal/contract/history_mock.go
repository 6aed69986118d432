package contract

import (
	"github.com/stretchr/testify/mock"

	"github.com/capcurve/capcurve/schema"
)

// MockHistoryStore is a testify mock for the HistoryStore type.
type MockHistoryStore struct {
	mock.Mock
}

var _ HistoryStore = &MockHistoryStore{} // Compile-time check

// Init provides a mock function with given fields.
func (m *MockHistoryStore) Init() error {
	ret := m.Called()
	return ret.Error(0)
}

// Put provides a mock function with given fields.
func (m *MockHistoryStore) Put(rec schema.RunRecord, report []byte) (int64, error) {
	ret := m.Called(rec, report)
	return ret.Get(0).(int64), ret.Error(1)
}

// Latest provides a mock function with given fields.
func (m *MockHistoryStore) Latest() (*schema.RunRecord, []byte, error) {
	ret := m.Called()
	var rec *schema.RunRecord
	if ret.Get(0) != nil {
		rec = ret.Get(0).(*schema.RunRecord)
	}
	return rec, toBytes(ret.Get(1)), ret.Error(2)
}

// List provides a mock function with given fields.
func (m *MockHistoryStore) List(limit int) ([]schema.RunRecord, error) {
	ret := m.Called(limit)
	var recs []schema.RunRecord
	if ret.Get(0) != nil {
		recs = ret.Get(0).([]schema.RunRecord)
	}
	return recs, ret.Error(1)
}

// GetStatus provides a mock function with given fields.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.HistoryStatus), ret.Error(1)
}

// Close provides a mock function with given fields.
func (m *MockHistoryStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
