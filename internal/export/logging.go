package export

import (
	"io"

	"github.com/idlab-discover/carbonscope-cli/internal/logging"
)

var logger = &logging.Logger{PrefixText: "Export:", PrefixColor: logging.FgGreen, Field: "file"}

// SetLogger sets an optional destination for export logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(file string, format string, args ...any) {
	logger.Logf(file, format, args...)
}
