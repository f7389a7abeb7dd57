// Package flatfile reads and writes the registry as a plain text file, one
// patient per line:
//
//	Nome: Ana; Idade: 30; RG: 111; Entrada: 01/01/2024
//
// The format is lenient on input. A numeric field that does not parse
// becomes 0 and the line is still accepted.
package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/patient"
)

// DefaultFile is the file name used when none is given.
const DefaultFile = "dbPacientes.txt"

const (
	labelName  = "Nome:"
	labelAge   = "Idade:"
	labelID    = "RG:"
	labelEntry = "Entrada:"
)

// FormatLine renders rec as a single line without the trailing newline.
func FormatLine(rec patient.Record) string {
	return fmt.Sprintf("%s %s; %s %d; %s %s; %s %s",
		labelName, rec.Name, labelAge, rec.Age, labelID, rec.ID, labelEntry, rec.Entry)
}

// ParseLine reads a line produced by FormatLine. Unknown segments are
// ignored and missing ones stay at their zero value.
func ParseLine(line string) patient.Record {
	var rec patient.Record
	for _, seg := range strings.Split(strings.TrimRight(line, "\r\n"), ";") {
		seg = strings.TrimLeft(seg, " ")
		switch {
		case strings.HasPrefix(seg, labelName):
			rec.Name = trimValue(seg[len(labelName):])
		case strings.HasPrefix(seg, labelAge):
			rec.Age = atoi(seg[len(labelAge):])
		case strings.HasPrefix(seg, labelID):
			rec.ID = trimValue(seg[len(labelID):])
		case strings.HasPrefix(seg, labelEntry):
			rec.Entry = parseEntry(seg[len(labelEntry):])
		}
	}
	rec.Name = patient.NormalizeName(rec.Name)
	return rec
}

func trimValue(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, " "), " ")
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseEntry(s string) patient.Date {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 3)
	var nums [3]int
	for i := range parts {
		nums[i] = atoi(parts[i])
	}
	return patient.Date{Day: nums[0], Month: nums[1], Year: nums[2]}
}

// Write emits one line per record.
func Write(w io.Writer, records iter.Seq[patient.Record]) error {
	bw := bufio.NewWriter(w)
	for rec := range records {
		if _, err := bw.WriteString(FormatLine(rec) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses every non-blank line of r, in file order.
func Read(r io.Reader) ([]patient.Record, error) {
	var out []patient.Record
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, ParseLine(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFile writes records to path, truncating it.
// Any I/O failure wraps engine.ErrStorageUnavailable.
func SaveFile(path string, records iter.Seq[patient.Record]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w: %v", path, engine.ErrStorageUnavailable, err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w: %v", path, engine.ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w: %v", path, engine.ErrStorageUnavailable, err)
	}
	return nil
}

// LoadFile reads every record in path, in file order.
// Any I/O failure wraps engine.ErrStorageUnavailable and returns no records.
func LoadFile(path string) ([]patient.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %v", path, engine.ErrStorageUnavailable, err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %v", path, engine.ErrStorageUnavailable, err)
	}
	return records, nil
}
