package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
)

type LocalFileStorage struct {
	assetsDir string
	host      string
	port      int
}

func NewLocalFileStorage(cfg *config.Config) (*LocalFileStorage, error) {
	if cfg.AssetsDir == "" {
		return nil, fmt.Errorf("assets directory is not configured")
	}

	return &LocalFileStorage{
		assetsDir: cfg.AssetsDir,
		host:      cfg.Host,
		port:      cfg.Port,
	}, nil
}

func (s *LocalFileStorage) Upload(file FileInfo) (string, error) {
	dest := filepath.Join(s.assetsDir, file.Name+file.Extension)
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", err
	}

	if err := os.WriteFile(dest, file.Content, 0o644); err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d/file/%s%s", s.host, s.port, file.Name, file.Extension), nil
}

func (s *LocalFileStorage) GetFile(filename string) (*FileInfo, error) {
	file, err := os.Open(filepath.Join(s.assetsDir, filename))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Name:      filename,
		Extension: filepath.Ext(filename),
		Content:   content,
	}, nil
}

func (s *LocalFileStorage) ResolveFile(filename string) (string, error) {
	resolved := filepath.Join(s.assetsDir, filename)
	if _, err := os.Stat(resolved); err != nil {
		return "", err
	}

	return resolved, nil
}
