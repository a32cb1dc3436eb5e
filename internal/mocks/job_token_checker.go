package mocks

import "github.com/phrazzld/taskflow-api/internal/service/auth"

// MockJobTokenChecker stands in for auth.JobTokenVerifier.
type MockJobTokenChecker struct {
	// Token is the accepted value. An empty Token means not configured.
	Token string

	// VerifyFn overrides Verify when set.
	VerifyFn func(provided string) error

	// VerifyCalledWith records the last value passed to Verify.
	VerifyCalledWith string

	// VerifyCallCount tracks how many times Verify was called.
	VerifyCallCount int
}

// Configured reports whether Token is set.
func (m *MockJobTokenChecker) Configured() bool {
	return m.Token != ""
}

// Verify compares provided with Token.
func (m *MockJobTokenChecker) Verify(provided string) error {
	m.VerifyCalledWith = provided
	m.VerifyCallCount++

	if m.VerifyFn != nil {
		return m.VerifyFn(provided)
	}
	if m.Token == "" {
		return auth.ErrJobTokenNotConfigured
	}
	if provided != m.Token {
		return auth.ErrJobTokenMismatch
	}
	return nil
}
