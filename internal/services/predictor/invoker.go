package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Invocation captures one synchronous run of the prediction binary. It
// lives only for the duration of a single request.
type Invocation struct {
	Args   []string
	Stdout string
	Stderr string
}

// ProcessExitError reports a non-zero exit from the prediction binary with
// the full captured output attached. It is always fatal for the request.
type ProcessExitError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ProcessExitError) Error() string {
	return fmt.Sprintf(
		"sharp prediction failed with non-zero exit code %d\ncommand: %s\nstdout:\n%s\nstderr:\n%s",
		e.ExitCode, strings.Join(e.Args, " "), e.Stdout, e.Stderr,
	)
}

// Invoker runs the sharp CLI against a prepared input file.
type Invoker struct {
	binary string
	logger *zap.Logger
}

func NewInvoker(binary string, logger *zap.Logger) *Invoker {
	return &Invoker{
		binary: binary,
		logger: logger.Named("invoker"),
	}
}

// Predict runs `sharp predict` synchronously, blocking until the process
// exits or ctx expires. A non-zero exit is never retried.
func (inv *Invoker) Predict(ctx context.Context, inputPath, outputDir, checkpointPath string) (*Invocation, error) {
	args := []string{
		inv.binary, "predict",
		"-i", inputPath,
		"-o", outputDir,
		"-c", checkpointPath,
	}
	inv.logger.Info("running command", zap.String("command", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	invocation := &Invocation{
		Args:   args,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return invocation, &ProcessExitError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stdout:   invocation.Stdout,
				Stderr:   invocation.Stderr,
			}
		}

		return invocation, fmt.Errorf("failed to run %s: %w", inv.binary, err)
	}

	return invocation, nil
}
