package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-wide zerolog instance every component logs through.
// Init must run before any component calls one of the With* helpers below,
// otherwise they fork a zero-value logger that discards output.
var Logger zerolog.Logger

// Level is the subset of zerolog's levels this module exposes through
// configuration; Init falls back to InfoLevel for anything else, including
// the zero value.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case InfoLevel:
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config controls how Init builds the package logger.
type Config struct {
	Level  Level
	Pretty bool      // console-writer output instead of raw JSON lines
	Output io.Writer // defaults to os.Stdout
}

// Init builds the global Logger from cfg. Safe to call more than once (tests
// that want to capture output redirect Output and re-run Init).
func Init(cfg Config) {
	zerolog.SetGlobalLevel(cfg.Level.zerolog())

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	Logger = zerolog.New(output).With().Timestamp().Logger()
}

// WithComponent tags log lines with the subsystem emitting them, e.g.
// "consensus", "wal", "api".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithNodeID tags log lines with this process's cluster node identifier.
func WithNodeID(nodeID string) zerolog.Logger {
	return Logger.With().Str("node_id", nodeID).Logger()
}

// WithGroupID tags log lines with the WAL-Manager's storage group
// (LogNode) identifier they concern, so a single group's lifecycle can be
// grepped out of an otherwise interleaved multi-group log stream.
func WithGroupID(groupID string) zerolog.Logger {
	return Logger.With().Str("storage_group", groupID).Logger()
}

// WithTerm tags log lines with the consensus term they were emitted under,
// for correlating role transitions and election outcomes across a term
// boundary.
func WithTerm(term int64) zerolog.Logger {
	return Logger.With().Int64("term", term).Logger()
}

// WithPeer tags log lines with the remote peer address a transport or
// heartbeat operation is talking to.
func WithPeer(addr string) zerolog.Logger {
	return Logger.With().Str("peer", addr).Logger()
}

// Info logs msg at info level through the package logger.
func Info(msg string) { Logger.Info().Msg(msg) }

// Debug logs msg at debug level through the package logger.
func Debug(msg string) { Logger.Debug().Msg(msg) }

// Warn logs msg at warn level through the package logger.
func Warn(msg string) { Logger.Warn().Msg(msg) }

// Error logs msg at error level through the package logger.
func Error(msg string) { Logger.Error().Msg(msg) }

// Errorf logs err at error level with msg as the accompanying message.
func Errorf(msg string, err error) { Logger.Error().Err(err).Msg(msg) }

// Fatal logs msg at fatal level and terminates the process, per zerolog's
// Fatal semantics.
func Fatal(msg string) { Logger.Fatal().Msg(msg) }
