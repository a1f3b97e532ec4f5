package s3

import (
	"github.com/datazip-inc/kwanko/utils"
)

type Config struct {
	Bucket       string `json:"bucket" validate:"required"`
	Region       string `json:"region" validate:"required"`
	Prefix       string `json:"prefix,omitempty"`
	AccessKey    string `json:"access_key,omitempty"`
	SecretKey    string `json:"secret_key,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	// S3 compatible stores (MinIO, LocalStack)
	Endpoint  string `json:"endpoint,omitempty" validate:"omitempty,url"`
	PathStyle bool   `json:"path_style,omitempty"`
	// Compression codec of the uploaded parquet files, see the parquet destination
	Compression    string `json:"compression,omitempty" validate:"omitempty,oneof=snappy gzip zstd lz4 none"`
	MaxRowsPerFile int    `json:"max_rows_per_file,omitempty" validate:"gte=0"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}
