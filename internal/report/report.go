package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"fakebench/internal/services"
)

// Classes are the evaluation classes in CSV column order.
var Classes = []string{"real", "df", "f2f", "fs", "gann", "icf", "x2f"}

// Row is one transferred model's recall across every class.
type Row struct {
	MType      string
	OrigClass  string
	TransClass string
	Recalls    map[string]float64
}

// Writer appends recall rows to a CSV file. The header row is written only
// when the file did not exist beforehand, so repeated runs accumulate rows
// in one table. Every row is flushed and synced as soon as it is appended;
// an interrupted run keeps all completed rows.
type Writer struct {
	file *os.File
	csv  *csv.Writer
}

// NewWriter opens path for appending, writing the header first if the file
// is new.
func NewWriter(path string) (*Writer, error) {
	_, statErr := os.Stat(path)
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat report file: %w", statErr)
	}
	needHeader := statErr != nil

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	w := &Writer{file: file, csv: csv.NewWriter(file)}
	if needHeader {
		header := append([]string{"mtype", "orig_class", "trans_class"}, Classes...)
		if err := w.write(header); err != nil {
			file.Close()
			return nil, err
		}
	}
	return w, nil
}

// Append writes one row. The model type is lowercased; recalls are emitted
// in the fixed class order.
func (w *Writer) Append(row Row) error {
	record := make([]string, 0, 3+len(Classes))
	record = append(record,
		strings.ToLower(row.MType),
		row.OrigClass,
		row.TransClass,
	)
	for _, class := range Classes {
		recall, ok := row.Recalls[class]
		if !ok {
			return services.Wrap(services.ErrValidation, "report", "append",
				"missing recall for class "+class, nil)
		}
		record = append(record, strconv.FormatFloat(recall, 'g', -1, 64))
	}
	return w.write(record)
}

func (w *Writer) write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush report row: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync report file: %w", err)
	}
	return nil
}

// Close flushes buffered output and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush report file: %w", err)
	}
	return w.file.Close()
}
