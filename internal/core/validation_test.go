package core

import (
	"errors"
	"strings"
	"testing"
)

var testSpecs = []FieldSpec{
	{Key: FieldName, Header: "RAW MATERIAL NAME", Required: true},
	{Key: FieldCost, Header: "COST", Type: FieldNumeric, Required: true},
	{Key: FieldPartNo, Header: "PART #"},
}

func TestValidateHeaders(t *testing.T) {
	idx, err := ValidateHeaders([]string{"S.No", "raw material name", " Cost "}, testSpecs)
	if err != nil {
		t.Fatalf("ValidateHeaders: %v", err)
	}
	if pos, ok := idx.Position(testSpecs[0]); !ok || pos != 1 {
		t.Errorf("name position = %d, %v", pos, ok)
	}
	if _, ok := idx.Position(testSpecs[2]); ok {
		t.Error("optional PART # should be absent")
	}
}

func TestValidateHeaders_Missing(t *testing.T) {
	_, err := ValidateHeaders([]string{"PART #"}, testSpecs)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), "RAW MATERIAL NAME, COST") {
		t.Errorf("error should list every missing column: %v", err)
	}
}

func TestHeaderIndex_Extract(t *testing.T) {
	idx := MakeHeaderIndex([]string{"COST", "RAW MATERIAL NAME", "PART #"})

	cells := idx.Extract([]string{"5", "Steel Rod"}, testSpecs)

	if cells[FieldName] != "Steel Rod" || cells[FieldCost] != "5" {
		t.Errorf("cells = %v", cells)
	}
	if _, ok := cells[FieldPartNo]; ok {
		t.Error("short record should leave trailing fields absent")
	}
}
