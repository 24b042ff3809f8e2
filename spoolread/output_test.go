package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/spooltools/pkg/spool"
)

func testRecord() *spool.Record {
	return &spool.Record{
		Manufacturer:   "Bambu Lab",
		Material:       "PLA",
		ColorName:      "PLA Basic",
		ColorHex:       "#FF0000-#0000FF",
		WeightGrams:    1000,
		DiameterMm:     1.75,
		ProductionDate: "2024/01/15",
		UID:            "04A3B2C1001122",
	}
}

func TestParseOutputFormat(t *testing.T) {
	cases := map[string]outputFormat{
		"":     formatAuto,
		"auto": formatAuto,
		"TEXT": formatText,
		"json": formatJSON,
		"yaml": formatYAML,
	}
	for in, want := range cases {
		got, err := parseOutputFormat(in)
		if err != nil {
			t.Fatalf("parseOutputFormat(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseOutputFormat(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseOutputFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteRecordAutoUsesJSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, testRecord(), formatAuto); err != nil {
		t.Fatalf("writeRecord returned error: %v", err)
	}

	var got spool.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got != *testRecord() {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestWriteRecordText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, testRecord(), formatText); err != nil {
		t.Fatalf("writeRecord returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Material:         PLA", "Color:            #FF0000 + #0000FF", "Weight:           1000 g", "Diameter:         1.75 mm"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteRecordYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, testRecord(), formatYAML); err != nil {
		t.Fatalf("writeRecord returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "weight_grams: 1000") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}

	var got spool.Record
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got != *testRecord() {
		t.Fatalf("unexpected record: %+v", got)
	}
}
