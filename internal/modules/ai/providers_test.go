package ai

import (
	"errors"
	"testing"

	"github.com/reusedev/cutout-hub/config"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/stretchr/testify/require"
)

func TestBuildProviders(t *testing.T) {
	cfg := &config.Config{
		RequestTimeout: "5s",
		LocalModels:    []string{"u2netp"},
		Providers: map[string]config.Provider{
			"removebg":  {APIKey: "rb", CostPerImage: 0.01},
			"photoroom": {APIKey: "pr", Endpoint: "http://localhost:9000/segment"},
		},
	}
	p, err := BuildProviders(cfg)
	require.NoError(t, err)

	require.Equal(t, []string{"u2netp", "removebg", "photoroom"}, p.Registry.DefaultOrder())
	require.Len(t, p.ByName, 4)
	require.Equal(t, cutout.KindLocal, p.ByName["u2netp"].Kind())

	_, err = p.Registry.Remote("clipdrop")
	require.True(t, errors.Is(err, errs.Unconfigured))

	d, err := p.Registry.Remote("photoroom")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/segment", d.Endpoint)
	require.Equal(t, 0.02, d.CostPerImage)
}

func TestBuildProvidersAllLocals(t *testing.T) {
	p, err := BuildProviders(&config.Config{RequestTimeout: "5s"})
	require.NoError(t, err)
	require.Equal(t, []string{"u2net", "u2netp", "u2net_human_seg"}, p.Registry.DefaultOrder())
}
