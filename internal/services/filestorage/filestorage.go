package filestorage

import (
	"fmt"
	"strings"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
)

// FileInfo describes one artifact to store. Name is normally a content
// hash so identical artifacts dedupe.
type FileInfo struct {
	Name      string
	Extension string
	Content   []byte
}

type FileStorage interface {
	Upload(file FileInfo) (string, error)
	GetFile(filename string) (*FileInfo, error)
	ResolveFile(filename string) (string, error)
}

func NewFileStorage(cfg *config.Config) (FileStorage, error) {
	switch strings.ToLower(cfg.FilesystemType) {
	case config.FilesystemLocal:
		return NewLocalFileStorage(cfg)
	case config.FilesystemS3:
		return NewS3FileStorage(cfg)
	default:
		return nil, fmt.Errorf("invalid filesystem type %q", cfg.FilesystemType)
	}
}
