package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/checkpoint"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/fileuploader"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/predictor"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine is the execution-unit side of the system: it routes a request to
// its tier profile and runs checkpoint provisioning, process invocation and
// output resolution strictly in sequence on a pool worker.
type Engine struct {
	cfg         *config.Config
	router      *Router
	provisioner *checkpoint.Provisioner
	invoker     *predictor.Invoker
	uploader    *fileuploader.Uploader
	logger      *zap.Logger
}

func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}

	binary := cfg.SharpBinary
	if binary == "" {
		binary = config.DefaultSharpBinary
	}

	return &Engine{
		cfg:         cfg,
		router:      router,
		provisioner: checkpoint.NewProvisioner(cfg, logger),
		invoker:     predictor.NewInvoker(binary, logger),
		logger:      logger.Named("engine"),
	}, nil
}

// SetUploader enables background artifact archiving.
func (e *Engine) SetUploader(uploader *fileuploader.Uploader) {
	e.uploader = uploader
}

func (e *Engine) Stop() {
	e.router.Stop()
}

type predictResult struct {
	resp *types.GenerateSplatResponse
	err  error
}

// Predict runs one prediction on the worker pool of the request's tier,
// blocking until it completes or the profile's timeout ceiling kills it.
func (e *Engine) Predict(ctx context.Context, req *types.ValidatedRequest) (*types.GenerateSplatResponse, error) {
	profile, err := e.router.Lookup(req.Tier)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, profile.Timeout)
	defer cancel()

	startedAt := time.Now()

	results := make(chan predictResult, 1)
	profile.Pool().Submit(func() {
		outputName, artifact, err := e.predictOnWorker(ctx, profile, req)
		if err != nil {
			results <- predictResult{err: err}
			return
		}

		results <- predictResult{resp: &types.GenerateSplatResponse{
			OutputFilename: outputName,
			PlyBytesBase64: base64.StdEncoding.EncodeToString(artifact),
			ElapsedMs:      float64(time.Since(startedAt)) / float64(time.Millisecond),
		}}
	})

	select {
	case result := <-results:
		return result.resp, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// predictOnWorker performs the sequential pipeline inside a scratch
// workspace that is destroyed once the artifact has been read.
func (e *Engine) predictOnWorker(ctx context.Context, profile *Profile, req *types.ValidatedRequest) (string, []byte, error) {
	checkpointPath, err := e.provisioner.Ensure(ctx)
	if err != nil {
		return "", nil, err
	}

	workDir := filepath.Join(e.cfg.TempDir, "sharp-inference-"+uuid.NewString())
	inputDir := filepath.Join(workDir, "inputs")
	outputDir := filepath.Join(workDir, "outputs")
	for _, dir := range []string{inputDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	defer os.RemoveAll(workDir)

	inputFilename := predictor.EnsureImageSuffix(req.Filename, req.ImageBytes)
	inputPath := filepath.Join(inputDir, inputFilename)
	if err := os.WriteFile(inputPath, req.ImageBytes, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write input image: %w", err)
	}

	e.logger.Info("predicting splat",
		zap.String("gpu_tier", string(profile.Tier)),
		zap.String("gpu", profile.GPU),
		zap.String("input", inputFilename),
	)

	invocation, err := e.invoker.Predict(ctx, inputPath, outputDir, checkpointPath)
	if err != nil {
		return "", nil, err
	}

	resolvedPath, err := predictor.ResolveArtifact(outputDir, workDir, types.Stem(inputFilename), invocation)
	if err != nil {
		return "", nil, err
	}

	artifact, err := os.ReadFile(resolvedPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read output artifact: %w", err)
	}

	if e.uploader != nil {
		e.uploader.ArchiveBytes(artifact, ".ply")
	}

	return filepath.Base(resolvedPath), artifact, nil
}
