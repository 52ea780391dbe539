package classifier

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Transfer identifies one transferred model: a classifier originally
// trained on OrigClass and fine tuned on TransClass.
type Transfer struct {
	OrigClass  string
	TransClass string
}

// Name returns the model's directory name, "{orig}-to-{trans}".
func (t Transfer) Name() string {
	return t.OrigClass + "-to-" + t.TransClass
}

// ParseError describes a directory whose name does not follow the
// transferred model naming convention.
type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("transfer name %q: %s", e.Name, e.Reason)
}

// ParseTransferName parses a "{orig}-to-{trans}" directory name.
func ParseTransferName(name string) (Transfer, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 3 || parts[1] != "to" {
		return Transfer{}, &ParseError{Name: name, Reason: `want "{orig}-to-{trans}"`}
	}
	if parts[0] == "" || parts[2] == "" {
		return Transfer{}, &ParseError{Name: name, Reason: "empty class name"}
	}
	return Transfer{OrigClass: parts[0], TransClass: parts[2]}, nil
}

// Transfers lists the transferred model directories under dir in lexical
// order. Plain files are ignored. Directories with unrecognized names are
// skipped and reported so callers can log them.
func Transfers(dir string) (transfers []Transfer, skipped []ParseError, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list transferred models: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		transfer, err := ParseTransferName(entry.Name())
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				skipped = append(skipped, *parseErr)
			}
			continue
		}
		transfers = append(transfers, transfer)
	}
	return transfers, skipped, nil
}
