package testutil

import (
	"fmt"
	"os"
	"testing"
)

// EnsureTestEnvironment pins GO_ENV to "test" when it is unset and refuses
// any other environment, so a stray .env can never point tests at real data.
func EnsureTestEnvironment() error {
	switch env := os.Getenv("GO_ENV"); env {
	case "test":
		return nil
	case "":
		return os.Setenv("GO_ENV", "test")
	default:
		return fmt.Errorf("SAFETY CHECK FAILED: tests must run with GO_ENV=test to prevent data loss, current GO_ENV=%q", env)
	}
}

// RequireTestEnvironment fails the test immediately unless EnsureTestEnvironment succeeds.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if err := EnsureTestEnvironment(); err != nil {
		t.Fatal(err)
	}
}
