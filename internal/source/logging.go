package source

import (
	"io"

	"github.com/idlab-discover/carbonscope-cli/internal/logging"
)

var logger = &logging.Logger{PrefixText: "Source:", PrefixColor: logging.FgCyan}

// SetLogger sets an optional destination for data source logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(view string, format string, args ...any) {
	logger.Logf(view, format, args...)
}
