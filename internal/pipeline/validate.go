package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/pkg/utils"
)

// ErrUnknownIndicator is returned when a request names a column the tables do not carry
var ErrUnknownIndicator = errors.New("unknown indicator")

// ignoredColumns are non-indicator columns that may appear in either file
var ignoredColumns = map[string]bool{
	"":           true,
	"unnamed: 0": true, // dataframe index written without a name
	"region":     true,
	"entity":     true,
}

// tableSchema maps the columns of one input file
type tableSchema struct {
	path       string
	keys       map[string]int
	indicators []model.Indicator // numeric columns in file order
	columns    map[model.Indicator]int
	required   map[model.Indicator]bool
}

// resolveSchema checks the header against the expected key and indicator columns.
// Columns beyond the required set are kept as indicators when every non-null cell
// is numeric, and skipped otherwise.
func resolveSchema(t *csvTable, keyColumns []string, required []model.Indicator) (*tableSchema, error) {
	s := &tableSchema{
		path:     t.path,
		keys:     make(map[string]int, len(keyColumns)),
		columns:  make(map[model.Indicator]int),
		required: make(map[model.Indicator]bool, len(required)),
	}

	isKey := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		isKey[k] = true
	}
	for _, ind := range required {
		s.required[ind] = true
	}

	seen := make(map[string]bool, len(t.header))
	for i, h := range t.header {
		if seen[h] && h != "" {
			return nil, &LoadError{Path: t.path, Column: h, Line: 1, Err: fmt.Errorf("%w: column repeated", ErrDuplicateKey)}
		}
		seen[h] = true

		switch {
		case isKey[h]:
			s.keys[h] = i
		case s.required[model.Indicator(h)]:
			s.columns[model.Indicator(h)] = i
			s.indicators = append(s.indicators, model.Indicator(h))
		case ignoredColumns[strings.ToLower(h)], h == model.ColumnYear:
			// the prediction file may carry a constant year column
		default:
			if numericColumn(t, i) {
				s.columns[model.Indicator(h)] = i
				s.indicators = append(s.indicators, model.Indicator(h))
			} else {
				logging.Debug().Str("path", t.path).Str("column", h).Msg("skipping non-numeric column")
			}
		}
	}

	for _, k := range keyColumns {
		if _, ok := s.keys[k]; !ok {
			return nil, &LoadError{Path: t.path, Column: k, Line: 1, Err: ErrMissingColumn}
		}
	}
	for _, ind := range required {
		if _, ok := s.columns[ind]; !ok {
			return nil, &LoadError{Path: t.path, Column: string(ind), Line: 1, Err: ErrMissingColumn}
		}
	}
	return s, nil
}

func numericColumn(t *csvTable, col int) bool {
	for _, row := range t.rows {
		if _, _, err := utils.ParseCell(row[col]); err != nil {
			return false
		}
	}
	return true
}

func (s *tableSchema) country(t *csvTable, row []string, line int) (string, error) {
	c := strings.TrimSpace(row[s.keys[model.ColumnCountry]])
	if c == "" {
		return "", &LoadError{Path: t.path, Column: model.ColumnCountry, Line: line, Err: fmt.Errorf("%w: empty country", ErrMalformedValue)}
	}
	return c, nil
}

// values parses the indicator cells of a row. Null cells are left out of the map.
func (s *tableSchema) values(t *csvTable, row []string, line int) (map[model.Indicator]float64, error) {
	out := make(map[model.Indicator]float64, len(s.indicators))
	for _, ind := range s.indicators {
		v, ok, err := utils.ParseCell(row[s.columns[ind]])
		if err != nil {
			return nil, &LoadError{Path: t.path, Column: string(ind), Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedValue, err)}
		}
		if ok {
			out[ind] = v
		}
	}
	return out, nil
}

// JoinGaps lists prediction countries that have no historical rows. They never
// appear in a comparison.
func JoinGaps(ds *model.Dataset) []string {
	known := make(map[string]bool)
	for _, r := range ds.Observations {
		known[r.Country] = true
	}
	var gaps []string
	for _, p := range ds.Predictions {
		if !known[p.Country] {
			gaps = append(gaps, p.Country)
		}
	}
	sort.Strings(gaps)
	return gaps
}

// CheckIndicator returns ErrUnknownIndicator unless the historical table
// (or, when predicted is set, the prediction table) carries the column.
func CheckIndicator(ds *model.Dataset, ind model.Indicator, predicted bool) error {
	if ind == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownIndicator)
	}
	if predicted {
		if !ds.HasPredicted(ind) {
			return fmt.Errorf("%w: %s has no 2030 projection", ErrUnknownIndicator, ind)
		}
		return nil
	}
	if !ds.HasIndicator(ind) {
		return fmt.Errorf("%w: %s", ErrUnknownIndicator, ind)
	}
	return nil
}
