package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitExpandsEnv(t *testing.T) {
	t.Setenv("CLIPDROP_API_KEY", "cd-secret")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_input_size: 1024
fallback_to_local: true
providers:
  clipdrop:
    api_key: ${CLIPDROP_API_KEY}
    cost_per_image: 0.1
batch:
  concurrency: 4
  delay: 250ms
`), 0644))

	Init(path)

	require.Equal(t, "cd-secret", GConfig.Providers["clipdrop"].APIKey)
	require.Equal(t, int64(1024), GConfig.MaxInputSize)
	require.Equal(t, int64(40_000_000), GConfig.MaxInputPixels)
	require.Equal(t, 4, GConfig.Batch.Concurrency)
	require.Equal(t, 250*time.Millisecond, Duration(GConfig.Batch.Delay))
	require.Equal(t, "ghostscript", GConfig.PDF.Method)
	require.Equal(t, "printer", GConfig.PDF.StartingQuality)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		ok   bool
	}{
		{name: "defaults", yaml: ``, ok: true},
		{name: "bad delay", yaml: "batch:\n  delay: soon\n", ok: false},
		{name: "bad quality", yaml: "pdf:\n  starting_quality: best\n", ok: false},
		{name: "unknown local model", yaml: "local_models: [sam]\n", ok: false},
		{name: "negative cost", yaml: "providers:\n  removebg:\n    cost_per_image: -1\n", ok: false},
		{name: "storage without supplier", yaml: "storage_enabled: true\n", ok: false},
		{name: "negative pixel limit", yaml: "max_input_pixels: -1\n", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initFromYaml([]byte(tt.yaml))
			err := GConfig.Verify()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
