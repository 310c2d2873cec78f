//go:build !integration

package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/repository"
)

func TestInitializeDatabase_Disabled(t *testing.T) {
	components := InitializeDatabase(config.DatabaseConfig{Enabled: false})
	assert.Nil(t, components)
	assert.NoError(t, components.Close(context.Background()))
}

func TestIsStorageFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "version conflict", err: repository.ErrVersionConflict, want: false},
		{name: "wrapped version conflict", err: fmt.Errorf("save: %w", repository.ErrVersionConflict), want: false},
		{name: "connection error", err: assert.AnError, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isStorageFailure(tt.err))
		})
	}
}

func TestLogsTTLDays(t *testing.T) {
	assert.Equal(t, 30, logsTTLDays(720*time.Hour))
	assert.Equal(t, 1, logsTTLDays(time.Hour))
	assert.Equal(t, 1, logsTTLDays(0))
}
