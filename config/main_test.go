package config

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMain refuses to run outside GO_ENV=test. Load reads .env.<GO_ENV>, so a
// stray environment would point these tests at a real database.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprint(os.Stderr, safetyBanner(env))
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func safetyBanner(env string) string {
	return strings.Join([]string{
		"",
		"SAFETY CHECK FAILED",
		fmt.Sprintf("  config tests must run with GO_ENV=test (current GO_ENV=%q)", env),
		"  run: GO_ENV=test go test ./...",
		"",
	}, "\n")
}

func TestSafetyBanner(t *testing.T) {
	banner := safetyBanner("production")
	assert.Contains(t, banner, `current GO_ENV="production"`)
	assert.Contains(t, banner, "GO_ENV=test go test ./...")
	assert.NotContains(t, banner, "make")
}
