package parquet

import (
	"github.com/datazip-inc/kwanko/utils"
)

const DefaultMaxRowsPerFile = 1000000

type Config struct {
	Path string `json:"local_path" validate:"required"` // Local directory the stream folders are created in
	// Compression codec: snappy (default), gzip, zstd, lz4, none
	Compression    string `json:"compression,omitempty" validate:"omitempty,oneof=snappy gzip zstd lz4 none"`
	MaxRowsPerFile int    `json:"max_rows_per_file,omitempty" validate:"gte=0"`
}

func (c *Config) Validate() error {
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.MaxRowsPerFile == 0 {
		c.MaxRowsPerFile = DefaultMaxRowsPerFile
	}

	return utils.Validate(c)
}
