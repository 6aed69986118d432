package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run provides a mock function with given fields.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	callArgs := make([]any, 0, len(args)+2)
	callArgs = append(callArgs, ctx, repoPath)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	return toBytes(ret.Get(0)), ret.Error(1)
}

// CommitLog provides a mock function with given fields.
func (m *MockGitClient) CommitLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	return toBytes(ret.Get(0)), ret.Error(1)
}

// NumstatLog provides a mock function with given fields.
func (m *MockGitClient) NumstatLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	return toBytes(ret.Get(0)), ret.Error(1)
}

// AddedFilesLog provides a mock function with given fields.
func (m *MockGitClient) AddedFilesLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	return toBytes(ret.Get(0)), ret.Error(1)
}

func toBytes(v any) []byte {
	if v == nil {
		return nil
	}
	return v.([]byte)
}
