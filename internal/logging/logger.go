package logging

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide slog logger: JSON records to stdout.
// main swaps the default for a MultiHandler once the database is up.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
