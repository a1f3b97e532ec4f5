package constants

import (
	"errors"
	"time"
)

type DriverType string

const (
	Kwanko DriverType = "kwanko"
)

const (
	ParquetFileExt = "parquet"
	OlakeID        = "_olake_id"
	OlakeTimestamp = "_olake_timestamp"
	Namespace      = "kwanko"
)

// viper keys
const (
	ConfigFolder   = "CONFIG_FOLDER"
	StatePath      = "STATE_PATH"
	StreamsPath    = "STREAMS_PATH"
	EncryptionKey  = "ENCRYPTION_KEY"
	RequestTimeout = "REQUEST_TIMEOUT"
	EnvPrefix      = "OLAKE"
)

// Kwanko reporting API
const (
	DefaultHost     = "https://stat.netaffiliation.com"
	SalesEndpoint   = "/reqann.php"
	ListingEndpoint = "/lisann.php"
	StatusOK        = "OK"
	FieldDelimiter  = ";"

	DateLayout         = "2006-01-02"
	CompactDateLayout  = "20060102"
	CompactMonthLayout = "200601"

	DefaultRequestTimeout    = 60 * time.Second
	DefaultRequestsPerSecond = 5.0
)

var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrRemote        = errors.New("remote error")
)
