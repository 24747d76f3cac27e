package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// InsertModel renders a single-row INSERT from the db-tagged exported fields
// of model, in declaration order. suffix carries ON CONFLICT and RETURNING.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := taggedFields(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	var s statement
	s.write("INSERT INTO ", table, " (", strings.Join(columns, ", "), ") VALUES (")
	for i, v := range values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		s.write(" ", suffix)
	}
	return s.done()
}

func taggedFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model is %s, not a struct", v.Kind())
	}

	var columns []string
	var values []any
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.FieldByIndex(field.Index).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, errors.New("model has no db-tagged fields")
	}
	return columns, values, nil
}
