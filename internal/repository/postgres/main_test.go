package postgres

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	// Local runs pick up POSTGRES_* from the repo .env; CI sets them directly
	_ = godotenv.Load("../../../.env")

	os.Exit(m.Run())
}
