package encoding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Write serializes the sequence as a whitespace-delimited text matrix with
// one row per frame and 132 columns (x and y interleaved per landmark).
// Values are written in scientific notation with 18 fractional digits, which
// is more than enough to reproduce every float64 exactly on load.
func Write(w io.Writer, seq Sequence) error {
	bw := bufio.NewWriter(w)
	for _, frame := range seq.Frames {
		for i, point := range frame {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(formatValue(point.X)); err != nil {
				return err
			}
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
			if _, err := bw.WriteString(formatValue(point.Y)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a text matrix produced by Write back into a Sequence. Blank
// lines are ignored; every data row must carry exactly 132 values.
func Read(r io.Reader) (Sequence, error) {
	var seq Sequence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != valuesPerFrame {
			return Sequence{}, fmt.Errorf("row %d: want %d values, got %d", row, valuesPerFrame, len(fields))
		}
		var frame Points
		for i := 0; i < PointCount; i++ {
			x, err := strconv.ParseFloat(fields[2*i], 64)
			if err != nil {
				return Sequence{}, fmt.Errorf("row %d col %d: %w", row, 2*i, err)
			}
			y, err := strconv.ParseFloat(fields[2*i+1], 64)
			if err != nil {
				return Sequence{}, fmt.Errorf("row %d col %d: %w", row, 2*i+1, err)
			}
			frame[i] = Point{X: x, Y: y}
		}
		seq.Frames = append(seq.Frames, frame)
		row++
	}
	if err := scanner.Err(); err != nil {
		return Sequence{}, err
	}
	return seq, nil
}

// ReadFile loads a sequence from the encoding file at path.
func ReadFile(path string) (Sequence, error) {
	file, err := os.Open(path)
	if err != nil {
		return Sequence{}, err
	}
	defer file.Close()
	seq, err := Read(file)
	if err != nil {
		return Sequence{}, fmt.Errorf("read encoding %s: %w", path, err)
	}
	return seq, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'e', 18, 64)
}
