package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SheetLayout locates one sheet and its columns inside a workbook.
type SheetLayout struct {
	// Name is the worksheet name, matched case-insensitively.
	Name string `yaml:"name" json:"name"`

	// HeaderRow is the 1-based row holding the column headers.
	HeaderRow int `yaml:"header_row" json:"headerRow"`

	// Columns maps logical field keys to header text. Fields not listed
	// here use their default header.
	Columns map[string]string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Layout describes where the engine finds its three input sheets.
type Layout struct {
	RawMaterials  SheetLayout `yaml:"raw_materials" json:"rawMaterials"`
	SubAssemblies SheetLayout `yaml:"sub_assemblies" json:"subAssemblies"`
	BOM           SheetLayout `yaml:"bom" json:"bom"`
}

// DefaultLayout matches the stock-list workbook the importer was built for.
func DefaultLayout() Layout {
	return Layout{
		RawMaterials:  SheetLayout{Name: "RM", HeaderRow: 2},
		SubAssemblies: SheetLayout{Name: "CombineSFG", HeaderRow: 1},
		BOM:           SheetLayout{Name: "S-BOM", HeaderRow: 2},
	}
}

// LoadLayout reads a YAML layout file over the defaults. An empty path
// returns the defaults.
//
//	raw_materials:
//	  name: Raw Materials
//	  header_row: 1
//	  columns:
//	    stock: Opening Qty
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}

// Validate checks that every sheet has a name and a positive header row.
func (l Layout) Validate() error {
	var errs []error
	for _, s := range []struct {
		key   string
		sheet SheetLayout
	}{
		{"raw_materials", l.RawMaterials},
		{"sub_assemblies", l.SubAssemblies},
		{"bom", l.BOM},
	} {
		if strings.TrimSpace(s.sheet.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name must not be empty", s.key))
		}
		if s.sheet.HeaderRow < 1 {
			errs = append(errs, fmt.Errorf("%s.header_row (%d) must be >= 1", s.key, s.sheet.HeaderRow))
		}
		for field, header := range s.sheet.Columns {
			if strings.TrimSpace(header) == "" {
				errs = append(errs, fmt.Errorf("%s.columns.%s must not be empty", s.key, field))
			}
		}
	}
	return errors.Join(errs...)
}

// Header returns the header text for a field, falling back to def.
func (s SheetLayout) Header(field, def string) string {
	if h, ok := s.Columns[field]; ok && strings.TrimSpace(h) != "" {
		return h
	}
	return def
}
