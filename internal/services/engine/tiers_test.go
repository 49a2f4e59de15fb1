package engine

import (
	"testing"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/stretchr/testify/require"
)

func TestRouterCoversEveryTier(t *testing.T) {
	router, err := NewRouter(&config.Config{})
	require.NoError(t, err)
	defer router.Stop()

	for _, tier := range types.AllGPUTiers {
		profile, err := router.Lookup(tier)
		require.NoError(t, err)
		require.Equal(t, tier, profile.Tier)
		require.NotEmpty(t, profile.GPU)
		require.Equal(t, InferenceTimeout, profile.Timeout)
		require.NotNil(t, profile.Pool())
	}
}

func TestRouterRejectsUnknownTier(t *testing.T) {
	router, err := NewRouter(&config.Config{})
	require.NoError(t, err)
	defer router.Stop()

	_, err = router.Lookup(types.GPUTier("v100"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "v100")
}

func TestRouterProfilesAreIndependent(t *testing.T) {
	router, err := NewRouter(&config.Config{TierWorkers: 3})
	require.NoError(t, err)
	defer router.Stop()

	a10, err := router.Lookup(types.TierA10)
	require.NoError(t, err)
	h100, err := router.Lookup(types.TierH100)
	require.NoError(t, err)

	require.NotSame(t, a10.Pool(), h100.Pool())
}
