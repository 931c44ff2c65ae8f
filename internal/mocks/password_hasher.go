package mocks

import (
	"strings"
	"sync"

	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher for testing.
//
// By default Hash returns "hashed:" + password and Verify compares against
// that form, which keeps service tests fast and deterministic.
type MockPasswordHasher struct {
	// HashFn allows test cases to override Hash
	HashFn func(password string) (string, error)

	// VerifyFn allows test cases to override Verify
	VerifyFn func(password, hash string) bool

	mu          sync.Mutex
	hashCalls   int
	verifyCalls int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const mockHashPrefix = "hashed:"

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.mu.Lock()
	m.hashCalls++
	m.mu.Unlock()

	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return mockHashPrefix + password, nil
}

// Verify implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Verify(password, hash string) bool {
	m.mu.Lock()
	m.verifyCalls++
	m.mu.Unlock()

	if m.VerifyFn != nil {
		return m.VerifyFn(password, hash)
	}
	return strings.HasPrefix(hash, mockHashPrefix) && hash == mockHashPrefix+password
}

// HashCalls returns how many times Hash was called.
func (m *MockPasswordHasher) HashCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hashCalls
}

// VerifyCalls returns how many times Verify was called.
func (m *MockPasswordHasher) VerifyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}
