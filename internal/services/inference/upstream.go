package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"go.uber.org/zap"
)

// UpstreamError covers every way the remote deployment can fail: transport
// errors, non-2xx statuses and malformed or schema-invalid bodies. Paired
// with an HTTP request it should map to a 502 response status.
type UpstreamError struct {
	Reason     string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}

	return e.Reason
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamResponse uses pointer fields so that omitted keys are
// distinguishable from zero values and can be backfilled before validation.
type upstreamResponse struct {
	OutputFilename *string  `json:"outputFilename"`
	PlyBytesBase64 *string  `json:"plyBytesBase64"`
	ElapsedMs      *float64 `json:"elapsedMs"`
}

// generateFromUpstream makes exactly one POST to the configured endpoint.
// Retry policy is a caller concern.
func (s *Service) generateFromUpstream(ctx context.Context, req *types.ValidatedRequest) (*types.GenerateSplatResponse, error) {
	payload, err := json.Marshal(types.GenerateSplatRequest{
		ImageBytesBase64: base64.StdEncoding.EncodeToString(req.ImageBytes),
		Filename:         req.Filename,
		GPUTier:          string(req.Tier),
	})
	if err != nil {
		return nil, &UpstreamError{Reason: "failed to serialize upstream request", Err: err}
	}

	s.logger.Info("forwarding request upstream",
		zap.String("endpoint", s.cfg.EndpointUrl),
		zap.String("gpu_tier", string(req.Tier)),
	)

	startedAt := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.EndpointUrl, bytes.NewReader(payload))
	if err != nil {
		return nil, &UpstreamError{Reason: "failed to build upstream request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Reason: "failed to reach upstream endpoint", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Reason: "failed to read upstream response", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded upstreamResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &UpstreamError{Reason: "upstream response was not a valid JSON object", Err: err}
	}

	// The upstream is not trusted to report these. Derive the filename from
	// the input stem and measure the elapsed time around our own call.
	if decoded.OutputFilename == nil || *decoded.OutputFilename == "" {
		name := types.Stem(req.Filename) + ".ply"
		decoded.OutputFilename = &name
	}
	if decoded.ElapsedMs == nil {
		elapsed := float64(time.Since(startedAt)) / float64(time.Millisecond)
		decoded.ElapsedMs = &elapsed
	}

	if err := validateUpstreamResponse(&decoded); err != nil {
		return nil, err
	}

	return &types.GenerateSplatResponse{
		OutputFilename: *decoded.OutputFilename,
		PlyBytesBase64: *decoded.PlyBytesBase64,
		ElapsedMs:      *decoded.ElapsedMs,
	}, nil
}

func validateUpstreamResponse(resp *upstreamResponse) error {
	if resp.PlyBytesBase64 == nil || *resp.PlyBytesBase64 == "" {
		return &UpstreamError{Reason: "upstream response is missing plyBytesBase64"}
	}

	artifact, err := base64.StdEncoding.DecodeString(*resp.PlyBytesBase64)
	if err != nil {
		return &UpstreamError{Reason: "upstream plyBytesBase64 is not valid base64", Err: err}
	}
	if len(artifact) == 0 {
		return &UpstreamError{Reason: "upstream plyBytesBase64 decodes to an empty payload"}
	}

	if *resp.ElapsedMs < 0 {
		return &UpstreamError{Reason: "upstream elapsedMs is negative"}
	}

	return nil
}
