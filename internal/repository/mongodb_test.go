//go:build !integration

package repository

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoConfig_RetryPolicy(t *testing.T) {
	t.Run("single attempt without retry budget", func(t *testing.T) {
		cfg := DefaultMongoConfig()
		cfg.ConnectRetryMaxElapsed = 0

		assert.Equal(t, backoff.Stop, cfg.retryPolicy().NextBackOff())
	})

	t.Run("exponential within the budget", func(t *testing.T) {
		policy, ok := DefaultMongoConfig().retryPolicy().(*backoff.ExponentialBackOff)
		require.True(t, ok)
		assert.Equal(t, time.Minute, policy.MaxElapsedTime)
		assert.Equal(t, 10*time.Second, policy.MaxInterval)
	})
}

func TestMongoConfig_ClientOptions(t *testing.T) {
	cfg := DefaultMongoConfig()
	opts := cfg.clientOptions("mongodb://localhost:27017")

	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	require.NotNil(t, opts.RetryWrites)
	assert.True(t, *opts.RetryWrites)
	assert.Equal(t, []string{"localhost:27017"}, opts.Hosts)
}
