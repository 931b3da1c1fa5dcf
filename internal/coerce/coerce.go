// Package coerce turns a map of raw TSV strings into a map of typed Go
// values, driven entirely by a schema.Table's column descriptors
// (SPEC_FULL.md §4.2). It knows nothing about files or rows; the caller
// (internal/ingest) attaches file/row context to any error this package
// returns.
package coerce

import (
	"fmt"
	"strconv"

	"imdbdataset/internal/schema"
	"imdbdataset/pimdb"
)

// Row is the typed result of coercing one raw TSV row: column name to
// bool | int64 | float64 | string | nil.
type Row map[string]any

// Warning records a non-fatal coercion event: a non-nullable column hit the
// null sentinel and was substituted with its type's zero value.
type Warning struct {
	Column string
	Value  any
}

// Coerce converts columnValues (raw strings keyed by column name, as
// produced by internal/tsv) according to table's column descriptors. It
// returns the typed row, any zero-value-substitution warnings, and a fatal
// error for a malformed boolean, an unparseable int/float, or a raw value
// that exceeds an Enforced column's declared length cap (only
// title_principals.characters sets Enforced; every other column's Length is
// documentation, not a validator — SPEC_FULL.md §4.4).
func Coerce(table schema.Table, columnValues map[string]string) (Row, []Warning, error) {
	result := make(Row, len(table.Columns))
	var warnings []Warning

	for _, col := range table.Columns {
		raw, ok := columnValues[col.Name]
		if !ok {
			return nil, nil, fmt.Errorf("column %q missing from source row", col.Name)
		}

		if col.Enforced && col.Length > 0 && len(raw) > col.Length && raw != pimdb.NullSentinel {
			return nil, nil, fmt.Errorf("column %q: value of length %d exceeds cap %d", col.Name, len(raw), col.Length)
		}

		if raw == pimdb.NullSentinel {
			if col.Nullable {
				result[col.Name] = nil
				continue
			}
			zero := zeroValue(col.Type)
			result[col.Name] = zero
			warnings = append(warnings, Warning{Column: col.Name, Value: zero})
			continue
		}

		value, err := coerceScalar(col.Type, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		result[col.Name] = value
	}

	return result, warnings, nil
}

func zeroValue(t schema.LogicalType) any {
	switch t {
	case schema.TypeBool:
		return false
	case schema.TypeInt:
		return int64(0)
	case schema.TypeFloat:
		return float64(0)
	default:
		return ""
	}
}

func coerceScalar(t schema.LogicalType, raw string) (any, error) {
	switch t {
	case schema.TypeBool:
		switch raw {
		case "1":
			return true, nil
		case "0":
			return false, nil
		default:
			return nil, fmt.Errorf("value must be a boolean (\"0\" or \"1\") but is %q", raw)
		}
	case schema.TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a valid integer", raw)
		}
		return v, nil
	case schema.TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a valid float", raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
