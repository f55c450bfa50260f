package api

import (
	"io"

	"github.com/idlab-discover/carbonscope-cli/internal/logging"
)

var logger = &logging.Logger{PrefixText: "API:", PrefixColor: logging.FgMagenta, Field: "endpoint"}

// SetLogger sets an optional destination for request logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(path string, format string, args ...any) {
	logger.Logf(path, format, args...)
}
