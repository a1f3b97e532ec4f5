package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datazip-inc/kwanko/constants"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger zerolog.Logger
	// serializes protocol messages written to stdout
	messageMutex sync.Mutex
)

func init() {
	logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("%s", i))
		},
	}
}

// Init sets up console logging plus a rotated json log file under CONFIG_FOLDER/logs.
// Must be called after viper has been populated by the root command.
func Init() {
	zerolog.TimeFieldFormat = time.RFC3339
	writers := []io.Writer{consoleWriter(os.Stderr)}

	if folder := viper.GetString(constants.ConfigFolder); folder != "" {
		logDir := filepath.Join(folder, "logs", fmt.Sprintf("sync_%s", time.Now().UTC().Format("2006-01-02_15-04-05")))
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory[%s]: %s\n", logDir, err)
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, "olake.log"),
				MaxSize:    100, // megabytes
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	level := zerolog.InfoLevel
	if viper.GetBool("DEBUG") {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}

// message renders a single non-string value (e.g. a protocol message) as json
func message(v ...interface{}) string {
	if len(v) == 1 {
		switch value := v[0].(type) {
		case string:
			return value
		case error:
			return value.Error()
		case fmt.Stringer:
			return value.String()
		default:
			if data, err := json.Marshal(value); err == nil {
				return string(data)
			}
		}
	}
	return fmt.Sprint(v...)
}

func Info(v ...interface{}) {
	logger.Info().Msg(message(v...))
}

func Infof(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

func Debug(v ...interface{}) {
	logger.Debug().Msg(message(v...))
}

func Debugf(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

func Warn(v ...interface{}) {
	logger.Warn().Msg(message(v...))
}

func Warnf(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...interface{}) {
	logger.Error().Msg(message(v...))
}

func Errorf(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...interface{}) {
	logger.Error().Msg(message(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
	os.Exit(1)
}

// LogMessage writes a protocol message (SPEC, CATALOG, CONNECTION_STATUS) as a single json line on stdout
func LogMessage(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		Errorf("failed to marshal message: %s", err)
		return
	}

	messageMutex.Lock()
	defer messageMutex.Unlock()
	if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
		Errorf("failed to write message: %s", err)
	}
}

// LogState logs the state as a STATE message and rewrites the file at STATE_PATH.
// The file is replaced atomically so that a crash never leaves a half written state behind.
func LogState(state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}
	logger.Info().RawJSON("state", data).Msg("STATE")

	path := viper.GetString(constants.StatePath)
	if path == "" || path == os.DevNull {
		return nil
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %s", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write state: %s", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %s", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to replace state file[%s]: %s", path, err)
	}
	return nil
}

// FileLogger writes content as indented json to CONFIG_FOLDER/<fileName><fileExtension>
func FileLogger(content any, fileName, fileExtension string) error {
	folder := viper.GetString(constants.ConfigFolder)
	if folder == "" {
		folder = os.TempDir()
	}
	return FileLoggerWithPath(content, filepath.Join(folder, fileName+fileExtension))
}

// FileLoggerWithPath writes content as indented json to path
func FileLoggerWithPath(content any, path string) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content for file[%s]: %s", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for file[%s]: %s", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file[%s]: %s", path, err)
	}
	return nil
}
