package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/datazip-inc/kwanko/writers/parquet"
)

// S3 destination writes parquet files locally and uploads them to
// s3://<bucket>/<prefix>/<namespace>/<stream>/ when the stream is closed
type S3 struct {
	config   *Config
	stream   *types.ConfiguredStream
	tempDir  string
	parquet  *parquet.Parquet
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

func (s *S3) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *S3) Type() string {
	return string(destination.S3)
}

func (s *S3) session() (*session.Session, error) {
	config := aws.Config{
		Region: aws.String(s.config.Region),
	}

	if s.config.AccessKey != "" && s.config.SecretKey != "" {
		config.Credentials = credentials.NewStaticCredentials(s.config.AccessKey, s.config.SecretKey, s.config.SessionToken)
	}
	if s.config.Endpoint != "" {
		config.Endpoint = aws.String(s.config.Endpoint)
		config.S3ForcePathStyle = aws.Bool(s.config.PathStyle)
	}

	sess, err := session.NewSession(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %s", err)
	}
	return sess, nil
}

func (s *S3) connect() error {
	if s.s3Client != nil {
		return nil
	}

	sess, err := s.session()
	if err != nil {
		return err
	}
	s.s3Client = s3.New(sess)
	s.uploader = s3manager.NewUploaderWithClient(s.s3Client)
	return nil
}

// Check verifies the bucket is reachable with the configured credentials
func (s *S3) Check(ctx context.Context) error {
	if err := s.connect(); err != nil {
		return err
	}

	if _, err := s.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.config.Bucket)}); err != nil {
		return fmt.Errorf("failed to access bucket[%s]: %s", s.config.Bucket, err)
	}
	return nil
}

func (s *S3) Setup(ctx context.Context, stream *types.ConfiguredStream) error {
	if err := s.connect(); err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "kwanko-s3-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %s", err)
	}
	s.tempDir = tempDir
	s.stream = stream

	s.parquet = &parquet.Parquet{}
	parquetConfig := s.parquet.GetConfigRef().(*parquet.Config)
	parquetConfig.Path = tempDir
	parquetConfig.Compression = s.config.Compression
	parquetConfig.MaxRowsPerFile = s.config.MaxRowsPerFile
	if err := parquetConfig.Validate(); err != nil {
		return err
	}

	return s.parquet.Setup(ctx, stream)
}

func (s *S3) Write(ctx context.Context, record types.RawRecord) error {
	return s.parquet.Write(ctx, record)
}

// Key returns the object key of a staged file
func (s *S3) Key(fileName string) string {
	return path.Join(strings.Trim(s.config.Prefix, "/"), s.stream.Namespace(), s.stream.Name(), fileName)
}

// Close flushes the staged parquet files and uploads them; the staging directory is always removed
func (s *S3) Close(ctx context.Context) error {
	if s.parquet == nil {
		return nil
	}
	defer os.RemoveAll(s.tempDir)

	if err := s.parquet.Close(ctx); err != nil {
		return err
	}

	for _, filePath := range s.parquet.WrittenFiles() {
		if err := s.upload(ctx, filePath); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3) upload(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open staged file[%s]: %s", filePath, err)
	}
	defer file.Close()

	key := s.Key(filepath.Base(filePath))
	if _, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload file[%s] to bucket[%s]: %s", key, s.config.Bucket, err)
	}

	logger.Infof("Uploaded s3://%s/%s", s.config.Bucket, key)
	return nil
}

func init() {
	destination.Register(destination.S3, func() destination.Writer {
		return new(S3)
	})
}
