package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
)

func TestNewClient_Unreachable(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping failed")
}
