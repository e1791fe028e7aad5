package logging

import (
	"io"
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp     = "app"
	SourcePDF     = "pdf"
	SourceParser  = "parser"
	SourceStorage = "storage"
	SourceIngest  = "ingest"
	SourceMCP     = "mcp"
)

var (
	mu         sync.Mutex
	baseLogger *log.Logger
	level      = log.InfoLevel
	children   []*log.Logger
)

func base() *log.Logger {
	if baseLogger == nil {
		baseLogger = newBase(os.Stderr)
	}
	return baseLogger
}

func newBase(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		TimeFunction:    log.NowUTC,
		TimeFormat:      time.RFC3339Nano,
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
}

// Init configures the base logger. Logs always go to the given writer
// (stderr by default) so that stdout stays free for the MCP stdio transport.
func Init(w io.Writer, levelName string) error {
	lvl, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	level = lvl
	baseLogger = newBase(w)

	stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogger.Writer())

	// Loggers handed out before Init keep working but follow the new level
	// and writer.
	for _, child := range children {
		child.SetLevel(lvl)
		child.SetOutput(w)
	}
	return nil
}

// Logger returns a logfmt logger tagged with the provided source and any
// extra key/value context.
func Logger(source string, keyvals ...interface{}) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := base().With(append([]interface{}{"source", source}, keyvals...)...)
	children = append(children, l)
	return l
}

// Level returns the configured log level name.
func Level() string {
	mu.Lock()
	defer mu.Unlock()
	return level.String()
}
