// Package export writes projected records as text, JSON, JSON lines or CSV,
// optionally compressed.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/codec/registry"
)

// ErrUnknownFormat is returned for format names Write does not support.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an output encoding.
type Format string

// Supported formats.
const (
	Text  Format = "text"
	JSON  Format = "json"
	JSONL Format = "jsonl"
	CSV   Format = "csv"
)

// ParseFormat validates name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case Text, JSON, JSONL, CSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath picks a format from the extension of path, ignoring any
// compression extension. Unrecognised extensions give Text.
func FormatForPath(path string) Format {
	switch filepath.Ext(registry.TrimExtension(path)) {
	case ".json":
		return JSON
	case ".jsonl", ".ndjson":
		return JSONL
	case ".csv":
		return CSV
	default:
		return Text
	}
}

// Write encodes records to w. fields names the columns, in order, and is
// used for the header of Text and CSV output.
func Write(w io.Writer, format Format, fields []contagion.Field, records []contagion.Record) error {
	switch format {
	case Text:
		return writeText(w, fields, records)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []contagion.Record{}
		}
		return enc.Encode(records)
	case JSONL:
		return writeJSONL(w, records)
	case CSV:
		return writeCSV(w, fields, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes records to path, compressing according to its
// extension (".zst", ".gz").
func WriteFile(path string, format Format, fields []contagion.Field, records []contagion.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	cw, err := registry.ForPath(path).Writer(f)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := Write(cw, format, fields, records); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

func writeJSONL(w io.Writer, records []contagion.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		data, err := r.MarshalJSON()
		if err != nil {
			return err
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func writeCSV(w io.Writer, fields []contagion.Field, records []contagion.Record) error {
	cw := csv.NewWriter(w)
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = string(f)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	for _, r := range records {
		row = row[:0]
		for _, e := range r {
			row = append(row, strconv.FormatInt(e.Value, 10))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, fields []contagion.Field, records []contagion.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t", f)
	}
	fmt.Fprintln(tw)
	for _, r := range records {
		for _, e := range r {
			fmt.Fprintf(tw, "%s\t", contagion.FormatCount(e.Value))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
