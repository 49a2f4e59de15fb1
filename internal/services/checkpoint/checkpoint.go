package checkpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CommitFunc makes a completed checkpoint write visible to other execution
// instances sharing the cache volume. The default implementation syncs the
// cache directory; deployments with a real shared-volume primitive inject
// their own.
type CommitFunc func(path string) error

// Provisioner ensures the model checkpoint exists at the cache path before
// any prediction runs. It downloads at most once per cache path
// process-wide and never publishes a partially written file.
type Provisioner struct {
	url      string
	path     string
	logger   *zap.Logger
	commit   CommitFunc
	group    singleflight.Group
	progress bool
}

type Option func(*Provisioner)

// WithProgress renders a download progress bar. Used by the CLI download
// command; servers leave it off.
func WithProgress() Option {
	return func(p *Provisioner) {
		p.progress = true
	}
}

func WithCommitFunc(commit CommitFunc) Option {
	return func(p *Provisioner) {
		p.commit = commit
	}
}

func NewProvisioner(cfg *config.Config, logger *zap.Logger, opts ...Option) *Provisioner {
	url := cfg.CheckpointUrl
	if url == "" {
		url = config.DefaultCheckpointUrl
	}
	filename := cfg.CheckpointFilename
	if filename == "" {
		filename = config.DefaultCheckpointFilename
	}

	p := &Provisioner{
		url:    url,
		path:   filepath.Join(cfg.CacheDir, filename),
		logger: logger.Named("checkpoint"),
		commit: syncDir,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Path returns where the checkpoint is published once Ensure succeeds.
func (p *Provisioner) Path() string {
	return p.path
}

// Ensure returns the local checkpoint path, downloading it first if absent.
// Safe to call redundantly; concurrent cold-start calls share one download.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	if _, err := os.Stat(p.path); err == nil {
		return p.path, nil
	}

	_, err, _ := p.group.Do(p.path, func() (interface{}, error) {
		// Re-check inside the flight: a concurrent caller may have
		// finished the download while this one was queued.
		if _, err := os.Stat(p.path); err == nil {
			return nil, nil
		}

		// The download runs under the leader's ctx. If the leader
		// cancels, queued followers share its failure and re-ensure on
		// their next request; the download stays cancellable this way.
		return nil, p.download(ctx)
	})
	if err != nil {
		return "", err
	}

	return p.path, nil
}

func (p *Provisioner) download(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	p.logger.Info("downloading checkpoint",
		zap.String("url", p.url),
		zap.String("dest", p.path),
	)

	// The download lands in a scratch path; the published name only ever
	// appears via the rename below, after a complete write.
	tmpPath := p.path + ".tmp"
	defer os.Remove(tmpPath)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 5 * time.Minute

	if err := backoff.Retry(func() error {
		return p.downloadOnce(ctx, tmpPath)
	}, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("checkpoint download failed: %w", err)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("failed to publish checkpoint: %w", err)
	}

	if err := p.commit(p.path); err != nil {
		return fmt.Errorf("failed to commit checkpoint to shared volume: %w", err)
	}

	return nil
}

func (p *Provisioner) downloadOnce(ctx context.Context, tmpPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to open scratch file: %w", err))
	}
	defer f.Close()

	reader := io.Reader(resp.Body)
	if p.progress {
		bar, finish := newProgressBar(filepath.Base(p.path), resp.ContentLength)
		defer finish()
		reader = bar.ProxyReader(resp.Body)
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fmt.Errorf("download size mismatch: expected %d, got %d", resp.ContentLength, written)
	}

	return f.Sync()
}

func newProgressBar(name string, total int64) (*mpb.Bar, func()) {
	progress := mpb.New(
		mpb.WithWidth(60),
		mpb.WithRefreshRate(180*time.Millisecond),
	)

	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: 40, C: decor.DidentRight}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.EwmaETA(decor.ET_STYLE_GO, 90),
			decor.Name(" ] "),
			decor.EwmaSpeed(decor.UnitKiB, "% .2f", 60),
		),
	)

	return bar, progress.Wait
}

// syncDir flushes directory metadata so the published checkpoint survives a
// crash and is observable by other readers of the volume.
func syncDir(path string) error {
	dir, err := os.Open(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer dir.Close()

	return dir.Sync()
}
