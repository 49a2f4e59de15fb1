package fileuploader

import (
	"github.com/kstonekuan/splatter-mcp-app/internal/services/filestorage"
	"github.com/kstonekuan/splatter-mcp-app/internal/utils/hashutil"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

// Uploader archives produced artifacts in the background so the response
// path never waits on storage.
type Uploader struct {
	wp          *workerpool.WorkerPool
	filestorage filestorage.FileStorage
	logger      *zap.Logger
}

func NewFileUploader(filestorage filestorage.FileStorage, maxWorkers int, logger *zap.Logger) *Uploader {
	return &Uploader{
		wp:          workerpool.New(maxWorkers),
		filestorage: filestorage,
		logger:      logger.Named("fileuploader"),
	}
}

func (u *Uploader) Stop() {
	u.wp.StopWait()
}

// ArchiveBytes stores content under its blake3 digest. Fire and forget:
// failures are logged, never surfaced to the request.
func (u *Uploader) ArchiveBytes(content []byte, extension string) {
	if u.filestorage == nil {
		return
	}

	file := filestorage.FileInfo{
		Name:      hashutil.Blake3Hash(content),
		Extension: extension,
		Content:   content,
	}

	u.wp.Submit(func() {
		url, err := u.filestorage.Upload(file)
		if err != nil {
			u.logger.Error("failed to archive artifact",
				zap.String("name", file.Name),
				zap.Error(err),
			)
			return
		}

		u.logger.Info("archived artifact", zap.String("url", url))
	})
}
