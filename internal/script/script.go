// Package script renders a batch as a standalone SQL script.
//
// The script wraps every statement in one BEGIN/COMMIT block and appends
// the verification queries after it. Statement arguments are inlined as
// literals here and nowhere else.
package script

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// Render writes the batch to w as a SQL script.
func Render(w io.Writer, b core.Batch) error {
	body, err := renderStatements(b)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	writeHeader(bw, b, xxh3.Hash(body))

	bw.WriteString("BEGIN;\n\n")
	bw.Write(body)
	bw.WriteString("COMMIT;\n")

	if len(b.Verification) > 0 {
		bw.WriteString("\n-- Verification\n")
		for _, q := range b.Verification {
			fmt.Fprintf(bw, "\n-- %s\n%s;\n", q.Name, q.SQL)
		}
	}

	return bw.Flush()
}

func renderStatements(b core.Batch) ([]byte, error) {
	var body bytes.Buffer
	for _, stmt := range b.Statements {
		sql, err := Inline(stmt.SQL, stmt.Args)
		if err != nil {
			return nil, fmt.Errorf("render %s statement %q: %w", stmt.Entity, stmt.Comment, err)
		}
		fmt.Fprintf(&body, "-- %s: %s\n%s;\n\n", stmt.Entity, oneLine(stmt.Comment), sql)
	}
	return body.Bytes(), nil
}

func writeHeader(w *bufio.Writer, b core.Batch, checksum uint64) {
	fmt.Fprintln(w, "-- Inventory import generated by stockimport")
	if b.RunID != uuid.Nil {
		fmt.Fprintf(w, "-- Run ID:       %s\n", b.RunID)
	}
	if !b.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "-- Generated at: %s\n", b.GeneratedAt.UTC().Format(time.RFC3339))
	}
	if b.Source != "" {
		fmt.Fprintf(w, "-- Source:       %s\n", oneLine(filepath.Base(b.Source)))
	}
	fmt.Fprintf(w, "-- Dialect:      %s\n", b.Dialect)
	fmt.Fprintf(w, "-- Statements:   %d (%s)\n", len(b.Statements), countsLine(b))
	fmt.Fprintf(w, "-- Checksum:     xxh3:%016x\n", checksum)

	if len(b.Warnings) > 0 {
		fmt.Fprintf(w, "--\n-- Warnings (%d):\n", len(b.Warnings))
		for _, d := range b.Warnings {
			fmt.Fprintf(w, "--   %s\n", oneLine(d.String()))
		}
	}
	fmt.Fprintln(w)
}

func countsLine(b core.Batch) string {
	parts := make([]string, 0, len(core.Entities))
	for _, e := range core.Entities {
		parts = append(parts, fmt.Sprintf("%s %d", e, b.Count(e)))
	}
	return strings.Join(parts, ", ")
}

// oneLine keeps user text from breaking out of a -- comment.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// Checksum returns the xxh3 fingerprint recorded in a rendered script's
// header for the given batch.
func Checksum(b core.Batch) (uint64, error) {
	body, err := renderStatements(b)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(body), nil
}

// WriteFile renders the batch to path atomically: the script is written to
// a temporary file in the same directory and renamed on success, so a
// failed run never leaves a partial script behind.
func WriteFile(path string, b core.Batch) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stockimport-*.sql")
	if err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	tmpName := tmp.Name()

	if err := Render(tmp, b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write script: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write script: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}
