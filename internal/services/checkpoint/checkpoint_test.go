package checkpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvisioner(t *testing.T, url string, opts ...Option) *Provisioner {
	t.Helper()
	cfg := &config.Config{
		CacheDir:           t.TempDir(),
		CheckpointUrl:      url,
		CheckpointFilename: "model.pt",
	}

	return NewProvisioner(cfg, zap.NewNop(), opts...)
}

func TestEnsureDownloadsOnce(t *testing.T) {
	var requests atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("checkpoint-weights"))
	}))
	defer ts.Close()

	p := newTestProvisioner(t, ts.URL)

	path, err := p.Ensure(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "checkpoint-weights", string(content))
	require.Equal(t, int64(1), requests.Load())

	// second call must be satisfied from the cache
	again, err := p.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, path, again)
	require.Equal(t, int64(1), requests.Load())
}

func TestEnsureReturnsExistingFileWithoutNetwork(t *testing.T) {
	p := newTestProvisioner(t, "http://127.0.0.1:1/unreachable")
	require.NoError(t, os.MkdirAll(filepath.Dir(p.Path()), 0o755))
	require.NoError(t, os.WriteFile(p.Path(), []byte("already here"), 0o644))

	path, err := p.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, p.Path(), path)
}

func TestConcurrentEnsureSharesOneDownload(t *testing.T) {
	var requests atomic.Int64
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		w.Write([]byte("checkpoint-weights"))
	}))
	defer ts.Close()

	p := newTestProvisioner(t, ts.URL)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Ensure(context.Background())
		}(i)
	}

	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), requests.Load())
}

func TestFailedDownloadPublishesNothing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	p := newTestProvisioner(t, ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // keep the backoff loop from retrying for minutes

	_, err := p.Ensure(ctx)
	require.Error(t, err)

	_, statErr := os.Stat(p.Path())
	require.True(t, os.IsNotExist(statErr))

	_, statErr = os.Stat(p.Path() + ".tmp")
	require.True(t, os.IsNotExist(statErr), "scratch file must be cleaned up")
}

func TestCommitHookRunsAfterPublish(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("checkpoint-weights"))
	}))
	defer ts.Close()

	var committed string
	p := newTestProvisioner(t, ts.URL, WithCommitFunc(func(path string) error {
		// the published file must already be complete when commit runs
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "checkpoint-weights", string(content))
		committed = path
		return nil
	}))

	path, err := p.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, path, committed)
}
