package commands

import (
	"fmt"
	"io"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// RunLogFilter filters the event log and writes matching events to output.
func RunLogFilter(path, output string, opts EventFilterOptions, stdout io.Writer) error {
	if output == "" {
		return fmt.Errorf("%w: output file", errMissingArg)
	}

	filter, err := opts.Filter()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	fmt.Fprintf(stdout, "Filtered %d events to %s\n", count, output)
	return nil
}
