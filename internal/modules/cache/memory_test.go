package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	m := NewManager[string](time.Minute, time.Minute)
	require.NoError(t, m.SetWithExpiration("task-1", `{"status":"queued"}`, time.Minute))

	v, err := m.GetValue("task-1")
	require.NoError(t, err)
	require.Equal(t, `{"status":"queued"}`, v)

	v, err = m.GetValue("missing")
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestExpiration(t *testing.T) {
	m := NewManager[string](time.Minute, time.Millisecond)
	require.NoError(t, m.SetWithExpiration("k", "v", 10*time.Millisecond))
	require.Eventually(t, func() bool {
		v, err := m.GetValue("k")
		return err == nil && v == ""
	}, time.Second, 5*time.Millisecond)
	require.NotNil(t, TaskCacheManager())
}
