package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/spooltools/pkg/spool"
)

type outputFormat int

const (
	formatAuto outputFormat = iota
	formatText
	formatJSON
	formatYAML
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return formatAuto, nil
	case "text":
		return formatText, nil
	case "json":
		return formatJSON, nil
	case "yaml":
		return formatYAML, nil
	default:
		return formatAuto, fmt.Errorf("unknown output format %q", s)
	}
}

// resolve picks text for terminals and JSON for pipes when f is formatAuto.
func (f outputFormat) resolve(w io.Writer) outputFormat {
	if f != formatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return formatText
	}
	return formatJSON
}

func writeRecord(w io.Writer, rec *spool.Record, f outputFormat) error {
	switch f.resolve(w) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	default:
		rec.Print(w)
		return nil
	}
}
