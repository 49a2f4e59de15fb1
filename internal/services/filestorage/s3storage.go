package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
)

type S3FileStorage struct {
	client *s3.Client
	cfg    *config.S3Config
}

func NewS3FileStorage(cfg *config.Config) (*S3FileStorage, error) {
	if cfg.S3 == nil {
		return nil, fmt.Errorf("s3 config is not set")
	}

	credentialsProvider := credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithRegion(cfg.S3.Region),
		awsConfig.WithCredentialsProvider(credentialsProvider),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.EndpointUrl != "" {
			o.BaseEndpoint = &cfg.S3.EndpointUrl
		}
	})

	return &S3FileStorage{
		client: client,
		cfg:    cfg.S3,
	}, nil
}

func (s *S3FileStorage) Upload(file FileInfo) (string, error) {
	folder := strings.TrimSuffix(s.cfg.Folder, "/")
	key := fmt.Sprintf("%s/%s%s", folder, file.Name, file.Extension)
	mtype := mimetype.Detect(file.Content).String()

	input := s3.PutObjectInput{
		Key:         &key,
		ContentType: &mtype,
		Bucket:      &s.cfg.Bucket,
		Body:        bytes.NewReader(file.Content),
	}
	if _, err := s.client.PutObject(context.TODO(), &input); err != nil {
		return "", err
	}

	publicUrl := strings.TrimSuffix(s.cfg.PublicUrl, "/")
	if publicUrl == "" {
		return "", fmt.Errorf("s3 public_url is not set; cannot build artifact URL for key %s", key)
	}

	return fmt.Sprintf("%s/%s", publicUrl, key), nil
}

func (s *S3FileStorage) GetFile(filename string) (*FileInfo, error) {
	folder := strings.TrimSuffix(s.cfg.Folder, "/")
	key := fmt.Sprintf("%s/%s", folder, filename)

	object, err := s.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer object.Body.Close()

	content, err := io.ReadAll(object.Body)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Name:      filename,
		Extension: filepath.Ext(filename),
		Content:   content,
	}, nil
}

func (s *S3FileStorage) ResolveFile(filename string) (string, error) {
	return "", fmt.Errorf("s3 storage does not resolve local paths")
}
