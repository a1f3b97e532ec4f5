package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/datazip-inc/kwanko/destination"
	"github.com/datazip-inc/kwanko/types"
	"github.com/datazip-inc/kwanko/utils"
	"github.com/datazip-inc/kwanko/utils/logger"
	"github.com/hashicorp/go-multierror"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

type FileMetadata struct {
	fileName    string
	recordCount int
	writer      *pqgo.GenericWriter[any]
	parquetFile source.ParquetFile
}

// Parquet writes each stream into <local_path>/<namespace>/<stream>/<ulid>.parquet,
// rolling to a new file every max_rows_per_file records
type Parquet struct {
	config   *Config
	stream   *types.ConfiguredStream
	schema   *pqgo.Schema
	basePath string
	files    []FileMetadata
	// paths of the non empty files, filled on Close
	written []string
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Type() string {
	return string(destination.PARQUET)
}

func (p *Parquet) compression() pqgo.WriterOption {
	switch p.config.Compression {
	case "gzip":
		return pqgo.Compression(&pqgo.Gzip)
	case "zstd":
		return pqgo.Compression(&pqgo.Zstd)
	case "lz4":
		return pqgo.Compression(&pqgo.Lz4Raw)
	case "none":
		return pqgo.Compression(&pqgo.Uncompressed)
	default:
		return pqgo.Compression(&pqgo.Snappy)
	}
}

// Check validates the local path is writable
func (p *Parquet) Check(_ context.Context) error {
	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	probe, err := os.CreateTemp(p.config.Path, ".olake-check-*")
	if err != nil {
		return fmt.Errorf("local path[%s] is not writable: %s", p.config.Path, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (p *Parquet) Setup(_ context.Context, stream *types.ConfiguredStream) error {
	p.stream = stream
	p.schema = stream.GetStream().ToParquet()
	p.basePath = filepath.Join(p.config.Path, stream.Namespace(), stream.Name())
	p.files = nil
	p.written = nil

	if err := os.MkdirAll(p.basePath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories[%s]: %s", p.basePath, err)
	}
	return nil
}

func (p *Parquet) createNewFile() error {
	fileName := utils.TimestampedFileName(constants.ParquetFileExt)
	filePath := filepath.Join(p.basePath, fileName)

	pqFile, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file writer: %s", err)
	}

	p.files = append(p.files, FileMetadata{
		fileName:    fileName,
		writer:      pqgo.NewGenericWriter[any](pqFile, p.schema, p.compression()),
		parquetFile: pqFile,
	})
	logger.Debugf("Created parquet file[%s] for stream[%s]", filePath, p.stream.ID())
	return nil
}

// Write writes a record to the current parquet file; columns missing from the record are written as null
func (p *Parquet) Write(_ context.Context, record types.RawRecord) error {
	if len(p.files) == 0 || p.files[len(p.files)-1].recordCount >= p.config.MaxRowsPerFile {
		if err := p.createNewFile(); err != nil {
			return err
		}
	}
	current := &p.files[len(p.files)-1]

	row := map[string]any{
		constants.OlakeID:        record.OlakeID,
		constants.OlakeTimestamp: record.OlakeTimestamp.UnixMicro(),
	}
	for _, column := range p.stream.GetStream().Columns() {
		if value, found := record.Data[column]; found && value != nil {
			row[column] = fmt.Sprint(value)
		} else {
			row[column] = nil
		}
	}

	if _, err := current.writer.Write([]any{row}); err != nil {
		return fmt.Errorf("failed to write record: %s", err)
	}
	current.recordCount++
	return nil
}

// Close flushes all parquet files and removes the ones that ended up empty.
// Every file is closed even when an earlier one fails.
func (p *Parquet) Close(_ context.Context) error {
	var closeErr *multierror.Error
	for _, file := range p.files {
		filePath := filepath.Join(p.basePath, file.fileName)
		if err := file.writer.Close(); err != nil {
			closeErr = multierror.Append(closeErr, fmt.Errorf("failed to close writer of file[%s]: %s", filePath, err))
		}
		if err := file.parquetFile.Close(); err != nil {
			closeErr = multierror.Append(closeErr, fmt.Errorf("failed to close parquet file[%s]: %s", filePath, err))
			continue
		}

		if file.recordCount == 0 {
			if err := os.Remove(filePath); err != nil {
				logger.Warnf("failed to remove empty parquet file[%s]: %s", filePath, err)
			}
			continue
		}
		logger.Infof("Finished writing file [%s] with %d records", filePath, file.recordCount)
		p.written = append(p.written, filePath)
	}
	p.files = nil
	return closeErr.ErrorOrNil()
}

// WrittenFiles lists the files holding at least one record once the writer is closed
func (p *Parquet) WrittenFiles() []string {
	return p.written
}

func init() {
	destination.Register(destination.PARQUET, func() destination.Writer {
		return new(Parquet)
	})
}
