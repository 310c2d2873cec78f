//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/testutil"
)

// TestMain starts one MongoDB container for every integration test in this
// package; each test gets its own database.
func TestMain(m *testing.M) {
	os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
}

func setupTestDBFromSharedContainer(t *testing.T) *MongoDB {
	db, err := NewMongoDB(testutil.SharedMongoURI(), testutil.DBName(t.Name()))
	require.NoError(t, err)
	return db
}
