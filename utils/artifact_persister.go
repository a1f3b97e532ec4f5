package utils

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/datazip-inc/kwanko/utils/logger"
)

const artifactSubDir = "_olake_runtime" // Directory within the base path for artifacts

// S3ArtifactConfig locates the bucket runtime artifacts (state.json) are mirrored to
type S3ArtifactConfig struct {
	Bucket       string `json:"bucket" validate:"required"`
	Region       string `json:"region,omitempty"`
	BasePath     string `json:"base_path,omitempty"`
	AccessKey    string `json:"access_key,omitempty"`
	SecretKey    string `json:"secret_key,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	// S3 compatible storage such as MinIO
	Endpoint   string `json:"endpoint,omitempty"`
	PathStyle  bool   `json:"path_style,omitempty"`
	DisableSSL bool   `json:"disable_ssl,omitempty"`
}

// ArtifactPersister uploads runtime artifacts to S3
type ArtifactPersister struct {
	uploader *s3manager.Uploader
	bucket   string
	basePath string
}

// NewArtifactPersister configures the AWS session from explicit credentials when given,
// falling back to the default credential chain otherwise
func NewArtifactPersister(cfg S3ArtifactConfig) (*ArtifactPersister, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid state backup config: %s", err)
	}

	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	} else if cfg.Endpoint == "" {
		logger.Warn("S3 region not explicitly provided for artifact persistence, relying on the default AWS configuration")
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken))
	}

	if cfg.Endpoint != "" {
		logger.Infof("Using custom S3 endpoint for artifact persistence: %s", cfg.Endpoint)
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).
			WithS3ForcePathStyle(cfg.PathStyle).
			WithDisableSSL(cfg.DisableSSL)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session for artifact persistence: %s", err)
	}

	return &ArtifactPersister{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		basePath: path.Join(strings.Trim(cfg.BasePath, "/"), artifactSubDir),
	}, nil
}

// Key returns the object key an artifact is stored under
func (p *ArtifactPersister) Key(name string) string {
	return path.Join(p.basePath, name)
}

// Upload overwrites the artifact with content
func (p *ArtifactPersister) Upload(ctx context.Context, name string, content []byte) error {
	_, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.Key(name)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact[%s] to bucket[%s]: %s", name, p.bucket, err)
	}
	return nil
}
