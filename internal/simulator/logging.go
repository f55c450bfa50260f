package simulator

import (
	"io"

	"github.com/idlab-discover/carbonscope-cli/internal/logging"
)

var logger = &logging.Logger{PrefixText: "Simulate:", PrefixColor: logging.FgYellow, Field: "model"}

// SetLogger sets an optional destination for simulator logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(model string, format string, args ...any) {
	logger.Logf(model, format, args...)
}
