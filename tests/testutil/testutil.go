package testutil

import (
	"os"
	"testing"

	"github.com/kendall-kelly/sari-inventory-api/config"
)

// TestAudience is the Auth0 audience used by suites that validate real tokens
const TestAudience = "https://api.test.com"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	RequireTestEnvironment(t)
}

// TestConfig returns a configuration for router-level suites. A non-empty
// authDomain turns on JWT validation for write routes.
func TestConfig(authDomain string) *config.Config {
	return &config.Config{
		DatabaseURL:   "sqlite://:memory:",
		Port:          "8080",
		GoEnv:         "test",
		Auth0Domain:   authDomain,
		Auth0Audience: TestAudience,
		LogLevel:      "error",
		PhoneRegion:   "IN",
	}
}
