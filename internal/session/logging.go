package session

import (
	"io"

	"github.com/idlab-discover/carbonscope-cli/internal/logging"
)

var logger = &logging.Logger{PrefixText: "Session:", PrefixColor: logging.FgGreen, Field: "user"}

// SetLogger sets an optional destination for session logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(user string, format string, args ...any) {
	logger.Logf(user, format, args...)
}
