package core

import "fmt"

// Logical sheet names used in diagnostics.
const (
	SheetRawMaterials  = "raw_materials"
	SheetSubAssemblies = "sub_assemblies"
	SheetBOM           = "bom"
)

// DiagnosticKind classifies a non-fatal finding made while building a plan.
type DiagnosticKind string

const (
	DiagSkippedRow       DiagnosticKind = "skipped_row"
	DiagUnresolvedVendor DiagnosticKind = "unresolved_vendor"
	DiagDuplicateVendor  DiagnosticKind = "duplicate_vendor"
	DiagEmptyVendorCode  DiagnosticKind = "empty_vendor_code"
	DiagCodeCollision    DiagnosticKind = "code_collision"
	DiagUnknownAssembly  DiagnosticKind = "unknown_assembly"
	DiagNotAnAssembly    DiagnosticKind = "not_an_assembly"
	DiagUnresolvedChild  DiagnosticKind = "unresolved_child"
	DiagOrphanLine       DiagnosticKind = "orphan_line"
	DiagDuplicateLine    DiagnosticKind = "duplicate_line"
)

// Diagnostic is a warning about the input. Diagnostics never stop a run.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Sheet   string         `json:"sheet,omitempty"`
	Line    int            `json:"line,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Sheet != "" && d.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", d.Sheet, d.Line, d.Message)
	}
	if d.Sheet != "" {
		return fmt.Sprintf("%s: %s", d.Sheet, d.Message)
	}
	return d.Message
}

func diagf(kind DiagnosticKind, sheet string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Sheet:   sheet,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

// CountDiagnostics tallies diagnostics by kind.
func CountDiagnostics(diags []Diagnostic) map[DiagnosticKind]int {
	counts := make(map[DiagnosticKind]int)
	for _, d := range diags {
		counts[d.Kind]++
	}
	return counts
}
