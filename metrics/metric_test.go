package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsLifecycle(t *testing.T) {
	m := NewMetrics("127.0.0.1:0")
	require.NoError(t, m.Stop(context.Background()))

	m.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
}
