package engine

import (
	"fmt"
	"time"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/gammazero/workerpool"
)

// InferenceTimeout is the per-profile ceiling on one prediction. Model
// inference dominates request latency, so it is far above ordinary values.
const InferenceTimeout = 900 * time.Second

// Profile binds a GPU tier to its execution envelope. The prediction logic
// is identical across tiers; only the declared resources differ.
type Profile struct {
	Tier     types.GPUTier
	GPU      string
	Timeout  time.Duration
	CacheDir string

	pool *workerpool.WorkerPool
}

// Pool returns the profile's worker pool. Each tier gets its own pool so a
// slow tier never starves another.
func (p *Profile) Pool() *workerpool.WorkerPool {
	return p.pool
}

// Router is the total mapping from the closed tier set to profiles. An
// unknown tier is rejected at the boundary, so a lookup miss here is a
// defect rather than a recoverable condition.
type Router struct {
	profiles map[types.GPUTier]*Profile
}

// tierGPUClass declares the resource class for each tier. The table must
// stay total over types.AllGPUTiers; NewRouter fails closed otherwise.
var tierGPUClass = map[types.GPUTier]string{
	types.TierT4:   "T4",
	types.TierL4:   "L4",
	types.TierA10:  "A10G",
	types.TierA100: "A100",
	types.TierH100: "H100",
}

// NewRouter builds one profile per known tier and fails closed when the
// table would not be total.
func NewRouter(cfg *config.Config) (*Router, error) {
	workers := cfg.TierWorkers
	if workers <= 0 {
		workers = config.DefaultTierWorkers
	}

	profiles := make(map[types.GPUTier]*Profile, len(types.AllGPUTiers))
	for _, tier := range types.AllGPUTiers {
		gpu, ok := tierGPUClass[tier]
		if !ok {
			return nil, fmt.Errorf("no compute profile declared for gpu tier %q", tier)
		}

		profiles[tier] = &Profile{
			Tier:     tier,
			GPU:      gpu,
			Timeout:  InferenceTimeout,
			CacheDir: cfg.CacheDir,
			pool:     workerpool.New(workers),
		}
	}

	return &Router{profiles: profiles}, nil
}

func (r *Router) Lookup(tier types.GPUTier) (*Profile, error) {
	profile, ok := r.profiles[tier]
	if !ok {
		return nil, fmt.Errorf("no compute profile for gpu tier %q", tier)
	}

	return profile, nil
}

func (r *Router) Stop() {
	for _, profile := range r.profiles {
		profile.pool.StopWait()
	}
}
