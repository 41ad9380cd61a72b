// Package catalogimport loads exercises into a user's catalog from CSV.
//
// Columns are name, muscle_group, weight, link, comments. Only the first two
// are required; a header row is detected and skipped. Weights accept either
// decimal separator ("62.5" or "62,5").
package catalogimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/claude/gymsplit/internal/models"
)

var validate = validator.New()

// Row is one parsed, valid CSV record.
type Row struct {
	Line  int
	Input models.ExerciseInput
}

// RowError reports why the record on Line was rejected.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// Parse reads every record from r. Invalid records are returned as
// RowErrors and do not stop parsing; the error result is reserved for
// unreadable input.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var (
		rows    []Row
		rejects []RowError
		first   = true
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejects = append(rejects, RowError{Line: perr.Line, Err: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if blank(rec) {
			continue
		}

		in, err := parseRecord(rec)
		if err != nil {
			rejects = append(rejects, RowError{Line: line, Err: err.Error()})
			continue
		}
		rows = append(rows, Row{Line: line, Input: in})
	}
	return rows, rejects, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name")
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseRecord(rec []string) (models.ExerciseInput, error) {
	if len(rec) < 2 {
		return models.ExerciseInput{}, fmt.Errorf("want at least 2 fields, got %d", len(rec))
	}
	if len(rec) > 5 {
		return models.ExerciseInput{}, fmt.Errorf("want at most 5 fields, got %d", len(rec))
	}

	group, err := models.ParseMuscleGroup(field(rec, 1))
	if err != nil {
		return models.ExerciseInput{}, err
	}

	in := models.ExerciseInput{
		Name:        field(rec, 0),
		MuscleGroup: group,
		Link:        optional(field(rec, 3)),
		Comments:    optional(field(rec, 4)),
	}
	if w := field(rec, 2); w != "" {
		weight, err := strconv.ParseFloat(strings.ReplaceAll(w, ",", "."), 64)
		if err != nil {
			return models.ExerciseInput{}, fmt.Errorf("invalid weight %q", w)
		}
		in.CurrentWeight = &weight
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.ExerciseInput{}, fmt.Errorf("%s failed %s", verrs[0].Field(), verrs[0].Tag())
		}
		return models.ExerciseInput{}, err
	}
	return in, nil
}
