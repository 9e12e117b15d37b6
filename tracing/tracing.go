// Package tracing configures the process-wide logger from the command
// line flags. All diagnostic output goes to stderr (or a trace file),
// never to stdout, so rendered invoices stay pipeable.
package tracing

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Levels lists the accepted --trace-level values, least to most verbose.
var Levels = []string{"error", "warn", "info", "debug", "trace"}

// Init configures logrus with the given level and output destination.
// An output of "-" means stderr; anything else is created as a file and
// returned so the caller can close it on exit.
func Init(level, output string, color bool) (io.Closer, error) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level %q: %w", level, err)
	}
	log.SetLevel(parsed)

	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		ForceColors:      color,
		DisableColors:    !color,
	})

	if output == "-" || output == "" {
		log.SetOutput(os.Stderr)
		return nil, nil
	}

	file, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace output file %s: %w", output, err)
	}
	log.SetOutput(file)
	// File output never gets ANSI sequences.
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return file, nil
}
