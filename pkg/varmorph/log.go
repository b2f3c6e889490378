package varmorph

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with timestamp formatting that writes to w and
// filters messages below level
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
