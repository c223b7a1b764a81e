package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthServiceReady(t *testing.T) {
	svc := NewHealthService(map[string]Pinger{
		"students": pingerFunc(func(ctx context.Context) error { return nil }),
		"sessions": pingerFunc(func(ctx context.Context) error { return nil }),
	}, NewMetricsService(), nil, 0)

	res := svc.Ready(context.Background())
	assert.True(t, res.Ready())
	assert.Equal(t, map[string]string{"students": "up", "sessions": "up"}, res.Checks)
}

func TestHealthServiceReportsDownComponent(t *testing.T) {
	svc := NewHealthService(map[string]Pinger{
		"students": pingerFunc(func(ctx context.Context) error { return errors.New("server selection timeout") }),
		"sessions": pingerFunc(func(ctx context.Context) error { return nil }),
	}, nil, nil, 0)

	res := svc.Ready(context.Background())
	assert.False(t, res.Ready())
	assert.Equal(t, "down", res.Checks["students"])
	assert.Equal(t, "up", res.Checks["sessions"])
}
