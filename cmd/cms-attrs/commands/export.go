package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// RunLogExport exports the event log to the specified format.
func RunLogExport(path, format, output string, stdout io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "set_id", "level", "category", "source", "operation", "oid", "index", "count", "message"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var op, attrType, index, count, message string
		switch {
		case event.Mutation != nil:
			op = event.Mutation.Operation.String()
			attrType = event.Mutation.OID
			index = strconv.Itoa(event.Mutation.Index)
			count = strconv.Itoa(event.Mutation.Count)
		case event.Encoding != nil:
			op = event.Encoding.Format
			count = strconv.Itoa(event.Encoding.Attributes)
		case event.Error != nil:
			op = event.Error.Operation.String()
			attrType = event.Error.OID
			message = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SetID,
			event.Level.String(),
			event.Category.String(),
			event.Source,
			op,
			attrType,
			index,
			count,
			message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
