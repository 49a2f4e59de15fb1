package inference

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when neither routing path is viable. Paired
// with an HTTP request it should map to a 503 response status.
var ErrNotConfigured = errors.New(
	"SHARP_ENDPOINT_URL is not configured; set SHARP_ALLOW_MOCK_INFERENCE=true for a local placeholder response")

// Service routes validated requests to the configured upstream deployment,
// or to the deterministic mock generator when that is explicitly enabled.
type Service struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger.Named("inference"),
		client: &http.Client{Timeout: upstreamTimeout(cfg.TimeoutSeconds)},
	}
}

// GenerateSplat is the dispatch gate. The routing decision is made once per
// call and has no side effects beyond the delegated call; no retries happen
// at this layer.
func (s *Service) GenerateSplat(ctx context.Context, req *types.ValidatedRequest) (*types.GenerateSplatResponse, error) {
	if strings.TrimSpace(s.cfg.EndpointUrl) != "" {
		return s.generateFromUpstream(ctx, req)
	}

	if parseBooleanFlag(s.cfg.AllowMockInference) {
		return s.generateMock(req), nil
	}

	return nil, ErrNotConfigured
}

func upstreamTimeout(seconds float64) time.Duration {
	if seconds <= 0 {
		seconds = config.DefaultTimeoutSeconds
	}

	return time.Duration(seconds * float64(time.Second))
}

func parseBooleanFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
