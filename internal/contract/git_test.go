package contract

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// TestMockGitClientRun ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClientRun(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()

	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")
	mockClient.
		On("Run", ctx, "/path/to/repo", "log", "-1", "--oneline").
		Return(expectedOutput, expectedError).
		Once()

	actualOutput, actualError := mockClient.Run(ctx, "/path/to/repo", "log", "-1", "--oneline")

	assert.Equal(t, expectedOutput, actualOutput, "Run should return the programmed output")
	assert.Equal(t, expectedError, actualError, "Run should return the programmed error")
	mockClient.AssertExpectations(t)
}

// TestMockGitClientLogs exercises the semantic log methods on the mock.
func TestMockGitClientLogs(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()

	mockClient.On("CommitLog", ctx, "/repo").Return([]byte("hash|date|subject"), nil).Once()
	mockClient.On("NumstatLog", ctx, "/repo").Return(nil, errors.New("boom")).Once()

	out, err := mockClient.CommitLog(ctx, "/repo")
	assert.NoError(t, err)
	assert.Equal(t, []byte("hash|date|subject"), out)

	out, err = mockClient.NumstatLog(ctx, "/repo")
	assert.Error(t, err)
	assert.Nil(t, out, "nil return value passes through as nil bytes")
	mockClient.AssertExpectations(t)
}

// TestNewLocalGitClient tests the constructor for LocalGitClient.
func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.IsType(t, &LocalGitClient{}, client, "NewLocalGitClient should return a LocalGitClient instance")
}

// TestLocalGitClientRunErrors tests the Run method's failure modes.
func TestLocalGitClientRunErrors(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()

	tests := []struct {
		name     string
		repoPath string
		args     []string
	}{
		{
			name:     "invalid repo path",
			repoPath: "/nonexistent/path",
			args:     []string{"status"},
		},
		{
			name:     "invalid git command",
			repoPath: t.TempDir(),
			args:     []string{"definitely-not-a-command"},
		},
		{
			name:     "log outside a repository",
			repoPath: t.TempDir(),
			args:     []string{"log", "--all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, tt.repoPath, tt.args...)
			assert.Error(t, err, "Run should return an error for %s", tt.name)
		})
	}
}

// TestLocalGitClientLogMethodsOutsideRepo confirms the semantic helpers
// surface git's own error instead of masking it.
func TestLocalGitClientLogMethodsOutsideRepo(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	dir := t.TempDir()

	_, err := client.CommitLog(ctx, dir)
	assert.Error(t, err, "CommitLog outside a repository should error")

	_, err = client.NumstatLog(ctx, dir)
	assert.Error(t, err, "NumstatLog outside a repository should error")

	_, err = client.AddedFilesLog(ctx, dir)
	assert.Error(t, err, "AddedFilesLog outside a repository should error")
}
