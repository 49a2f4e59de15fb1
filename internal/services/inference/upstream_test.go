package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUpstreamService(endpoint string) *Service {
	return NewService(&config.Config{EndpointUrl: endpoint, TimeoutSeconds: 5}, zap.NewNop())
}

func TestUpstreamSuccess(t *testing.T) {
	artifact := base64.StdEncoding.EncodeToString([]byte("ply-data"))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req types.GenerateSplatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "photo.jpg", req.Filename)
		require.Equal(t, "a10", req.GPUTier)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"outputFilename": "photo.ply",
			"plyBytesBase64": artifact,
			"elapsedMs":      1234.5,
		})
	}))
	defer ts.Close()

	resp, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "photo.ply", resp.OutputFilename)
	require.Equal(t, artifact, resp.PlyBytesBase64)
	require.Equal(t, 1234.5, resp.ElapsedMs)
}

func TestUpstreamBackfillsMissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"plyBytesBase64": base64.StdEncoding.EncodeToString([]byte("ply-data")),
		})
	}))
	defer ts.Close()

	resp, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, "photo.ply", resp.OutputFilename)
	require.GreaterOrEqual(t, resp.ElapsedMs, 0.0)
}

func TestUpstreamErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
	require.Contains(t, upstreamErr.Body, "model exploded")
}

func TestUpstreamInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	_, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestUpstreamNonObjectBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["not", "an", "object"]`))
	}))
	defer ts.Close()

	_, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestUpstreamMissingArtifact(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"outputFilename": "photo.ply",
		})
	}))
	defer ts.Close()

	_, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Contains(t, upstreamErr.Error(), "plyBytesBase64")
}

func TestUpstreamTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	_, err := newUpstreamService(ts.URL).GenerateSplat(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.NotNil(t, upstreamErr.Unwrap())
}
