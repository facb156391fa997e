package cutout

import (
	"errors"
	"testing"

	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(
		[]ProviderDescriptor{
			{Name: "removebg", Credential: "k1", CostPerImage: 0.20},
			{Name: "clipdrop", CostPerImage: 0.10},
			{Name: "photoroom", Credential: "k3", CostPerImage: 0.02},
			{Name: "other", Credential: "k4", CostPerImage: 0.02},
		},
		[]LocalModelDescriptor{{Name: "u2net"}, {Name: "u2netp"}},
	)
}

func TestDefaultOrder(t *testing.T) {
	require.Equal(t, []string{"u2net", "u2netp", "photoroom", "other", "removebg"}, testRegistry().DefaultOrder())
}

func TestRemoteLookup(t *testing.T) {
	r := testRegistry()

	d, err := r.Remote("removebg")
	require.NoError(t, err)
	require.Equal(t, "k1", d.Credential)

	_, err = r.Remote("clipdrop")
	require.True(t, errors.Is(err, errs.Unconfigured))

	_, err = r.Remote("u2net")
	require.True(t, errors.Is(err, errs.UnknownProvider))
}

func TestKnown(t *testing.T) {
	r := testRegistry()
	require.True(t, r.Known("clipdrop"))
	require.True(t, r.Known("u2netp"))
	require.True(t, r.IsLocal("u2netp"))
	require.False(t, r.IsLocal("removebg"))
	require.False(t, r.Known("rembg"))
	require.Len(t, r.Remotes(), 4)
	require.Len(t, r.Locals(), 2)
}
