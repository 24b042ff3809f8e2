package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/spooltools/pkg/bambu"
)

// spoolFile is the YAML description of the spool written into an image.
type spoolFile struct {
	Material       string  `yaml:"material"`
	ColorName      string  `yaml:"color_name"`
	Color          string  `yaml:"color"`
	SecondColor    string  `yaml:"second_color,omitempty"`
	WeightGrams    *int    `yaml:"weight_grams"`
	DiameterMm     float32 `yaml:"diameter_mm"`
	ProductionDate string  `yaml:"production_date"`
}

func loadSpoolFile(path string) (*spoolFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spool file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var sf spoolFile
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parse spool yaml: %w", err)
	}
	return &sf, nil
}

func (sf *spoolFile) fields() (bambu.Fields, error) {
	var f bambu.Fields
	if strings.TrimSpace(sf.Material) == "" {
		return f, fmt.Errorf("spool.material is required")
	}
	if strings.TrimSpace(sf.Color) == "" {
		return f, fmt.Errorf("spool.color is required")
	}
	if sf.WeightGrams == nil {
		return f, fmt.Errorf("spool.weight_grams is required")
	}
	if *sf.WeightGrams < 0 || *sf.WeightGrams > 0xFFFF {
		return f, fmt.Errorf("spool.weight_grams must be 0..65535")
	}
	if sf.DiameterMm <= 0 {
		return f, fmt.Errorf("spool.diameter_mm must be > 0")
	}

	color, err := bambu.ParseColor(sf.Color)
	if err != nil {
		return f, fmt.Errorf("spool.color: %w", err)
	}
	f = bambu.Fields{
		Material:       sf.Material,
		ColorName:      sf.ColorName,
		Color:          color,
		WeightGrams:    uint16(*sf.WeightGrams),
		DiameterMm:     sf.DiameterMm,
		ProductionDate: sf.ProductionDate,
	}
	if sf.SecondColor != "" {
		second, err := bambu.ParseColor(sf.SecondColor)
		if err != nil {
			return f, fmt.Errorf("spool.second_color: %w", err)
		}
		if second == [3]byte{} {
			return f, fmt.Errorf("spool.second_color #000000 cannot be stored, it reads back as no second color")
		}
		f.SecondColor = second
	}
	return f, nil
}
