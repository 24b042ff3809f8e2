// Package spool defines the filament spool record decoded from a tag and
// dispatches tag families to the readers that understand them.
package spool

import (
	"fmt"
	"io"
	"strings"
)

// Unknown is the placeholder for text fields that could not be decoded.
const Unknown = "Unknown"

// Record is the metadata decoded from one spool tag. A Record is only ever
// produced whole.
type Record struct {
	Manufacturer   string  `json:"manufacturer" yaml:"manufacturer"`
	Material       string  `json:"material" yaml:"material"`
	ColorName      string  `json:"color_name" yaml:"color_name"`
	ColorHex       string  `json:"color_hex" yaml:"color_hex"` // "#RRGGBB" or "#RRGGBB-#RRGGBB"
	WeightGrams    uint16  `json:"weight_grams" yaml:"weight_grams"`
	DiameterMm     float64 `json:"diameter_mm" yaml:"diameter_mm"`
	ProductionDate string  `json:"production_date" yaml:"production_date"` // "YYYY/MM/DD" or Unknown
	UID            string  `json:"uid" yaml:"uid"`
}

// Colors splits ColorHex into its one or two "#RRGGBB" values.
func (r *Record) Colors() []string {
	if r.ColorHex == "" {
		return nil
	}
	return strings.Split(r.ColorHex, "-")
}

// Print writes the record in a human-readable form.
func (r *Record) Print(w io.Writer) {
	fmt.Fprintf(w, "Manufacturer:     %s\n", r.Manufacturer)
	fmt.Fprintf(w, "Material:         %s\n", r.Material)
	fmt.Fprintf(w, "Color name:       %s\n", r.ColorName)
	fmt.Fprintf(w, "Color:            %s\n", strings.Join(r.Colors(), " + "))
	fmt.Fprintf(w, "Weight:           %d g\n", r.WeightGrams)
	fmt.Fprintf(w, "Diameter:         %.2f mm\n", r.DiameterMm)
	fmt.Fprintf(w, "Production date:  %s\n", r.ProductionDate)
	fmt.Fprintf(w, "UID:              %s\n", r.UID)
}
