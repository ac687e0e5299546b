package querybuilder

import (
	"errors"
	"reflect"
	"slices"
	"strings"
)

// Column tag options understood by the model helpers.
const tagNoUpdate = "noupdate"

// InsertModel builds an insert from the exported `db`-tagged fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model, false)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// UpdateModel starts an update that sets every `db`-tagged field of model,
// except fields tagged `noupdate`. Callers add Where and extra Set terms.
func UpdateModel(table string, model any) (*UpdateBuilder, error) {
	cols, vals, err := modelColumns(model, true)
	if err != nil {
		return nil, err
	}
	b := Update(table)
	for i, col := range cols {
		b.Set(col, vals[i])
	}
	return b, nil
}

func modelColumns(model any, forUpdate bool) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, errors.New("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, errors.New("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("db"), ",")
		col := strings.TrimSpace(tag[0])
		if col == "" || col == "-" {
			continue
		}
		if forUpdate && slices.Contains(tag[1:], tagNoUpdate) {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, errors.New("model has no db columns")
	}
	return cols, vals, nil
}
