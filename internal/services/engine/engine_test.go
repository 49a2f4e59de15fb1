package engine

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/predictor"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSharp writes a script that mimics the predictor CLI surface:
// sharp predict -i <input> -o <outputDir> -c <checkpoint>.
func stubSharp(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-sharp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func newTestEngine(t *testing.T, binary string) *Engine {
	t.Helper()
	cfg := &config.Config{
		TempDir:            t.TempDir(),
		CacheDir:           t.TempDir(),
		CheckpointUrl:      "http://127.0.0.1:1/unreachable",
		CheckpointFilename: "model.pt",
		SharpBinary:        binary,
		TierWorkers:        1,
	}

	// a pre-provisioned checkpoint keeps Ensure off the network
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CacheDir, "model.pt"), []byte("weights"), 0o644))

	eng, err := NewEngine(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(eng.Stop)
	return eng
}

func validatedRequest(image []byte) *types.ValidatedRequest {
	return &types.ValidatedRequest{
		ImageBytes: image,
		Filename:   "photo.jpg",
		Tier:       types.TierA10,
	}
}

func TestPredictProducesArtifact(t *testing.T) {
	script := stubSharp(t, `
in="$3"
out="$5"
stem=$(basename "$in")
stem="${stem%.*}"
printf 'ply-bytes' > "$out/$stem.ply"
`)
	eng := newTestEngine(t, script)

	resp, err := eng.Predict(context.Background(), validatedRequest([]byte("fake image")))
	require.NoError(t, err)
	require.Equal(t, "photo.ply", resp.OutputFilename)

	artifact, err := base64.StdEncoding.DecodeString(resp.PlyBytesBase64)
	require.NoError(t, err)
	require.Equal(t, "ply-bytes", string(artifact))
	require.GreaterOrEqual(t, resp.ElapsedMs, 0.0)
}

func TestPredictPassesCheckpointToProcess(t *testing.T) {
	script := stubSharp(t, `
out="$5"
ckpt="$7"
[ -f "$ckpt" ] || exit 9
printf 'ply-bytes' > "$out/photo.ply"
`)
	eng := newTestEngine(t, script)

	_, err := eng.Predict(context.Background(), validatedRequest([]byte("fake image")))
	require.NoError(t, err)
}

func TestPredictCleansUpWorkspace(t *testing.T) {
	script := stubSharp(t, `
out="$5"
printf 'ply-bytes' > "$out/photo.ply"
`)
	eng := newTestEngine(t, script)

	_, err := eng.Predict(context.Background(), validatedRequest([]byte("fake image")))
	require.NoError(t, err)

	entries, err := os.ReadDir(eng.cfg.TempDir)
	require.NoError(t, err)
	require.Empty(t, entries, "scratch workspace must be removed after the run")
}

func TestPredictSurfacesProcessFailure(t *testing.T) {
	script := stubSharp(t, `echo "CUDA out of memory" >&2; exit 7`)
	eng := newTestEngine(t, script)

	_, err := eng.Predict(context.Background(), validatedRequest([]byte("fake image")))

	var exitErr *predictor.ProcessExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 7, exitErr.ExitCode)
	require.Contains(t, exitErr.Stderr, "CUDA out of memory")
}

func TestPredictSurfacesMissingOutput(t *testing.T) {
	script := stubSharp(t, `exit 0`)
	eng := newTestEngine(t, script)

	_, err := eng.Predict(context.Background(), validatedRequest([]byte("fake image")))

	var notFound *predictor.OutputNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPredictRejectsUnknownTier(t *testing.T) {
	eng := newTestEngine(t, "sharp")

	req := validatedRequest([]byte("fake image"))
	req.Tier = types.GPUTier("v100")

	_, err := eng.Predict(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "v100")
}
