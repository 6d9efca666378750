package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/smartwealth/advisor/internal/config"
)

// serviceName tags every log line so aggregated streams can be filtered
// back to this service.
const serviceName = "advisor"

// New constructs a slog.Logger configured according to the provided
// settings, writing to w. A nil w writes to stdout. Debug level enables
// source locations.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	handler, err := buildHandler(cfg, w)
	if err != nil {
		return nil, err
	}

	return slog.New(handler).With("service", serviceName), nil
}

func buildHandler(cfg config.LoggingConfig, w io.Writer) (slog.Handler, error) {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}
