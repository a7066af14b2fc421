package format

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// maxCellWidth bounds a single table cell
const maxCellWidth = 48

// Table renders data as a bordered table. Slices become one row per element
// with an index column; maps become one row per key. Element maps and
// structs contribute their keys as columns. Data that is neither falls back
// to Value.
func Table(data interface{}, columns []string) string {
	rv := reflect.ValueOf(data)
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Value(data)
	}

	var keys []string
	var rows []reflect.Value
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			keys = append(keys, fmt.Sprintf("%d", i))
			rows = append(rows, rv.Index(i))
		}
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			keys = append(keys, fmt.Sprintf("%v", k.Interface()))
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, lookup(rv, k))
		}
	default:
		return Value(data)
	}

	cols := columns
	hasValue := false
	if len(cols) == 0 {
		seen := make(map[string]bool)
		for _, row := range rows {
			fields, ok := fieldsOf(row)
			if !ok {
				hasValue = true
				continue
			}
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if !seen[name] {
					seen[name] = true
					cols = append(cols, name)
				}
			}
		}
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault

	header := table.Row{"(index)"}
	for _, col := range cols {
		header = append(header, col)
	}
	if hasValue {
		header = append(header, "Value")
	}
	t.AppendHeader(header)

	for i, row := range rows {
		out := table.Row{keys[i]}
		fields, isRecord := fieldsOf(row)
		for _, col := range cols {
			cell := ""
			if isRecord {
				if v, ok := fields[col]; ok {
					cell = cellText(v)
				}
			}
			out = append(out, cell)
		}
		if hasValue {
			cell := ""
			if !isRecord {
				cell = cellText(row.Interface())
			}
			out = append(out, cell)
		}
		t.AppendRow(out)
	}
	return t.Render()
}

func lookup(m reflect.Value, key string) reflect.Value {
	for _, k := range m.MapKeys() {
		if fmt.Sprintf("%v", k.Interface()) == key {
			return m.MapIndex(k)
		}
	}
	return reflect.Value{}
}

// fieldsOf exposes the columns of a map or struct row
func fieldsOf(v reflect.Value) (map[string]interface{}, bool) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Map:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.MapKeys() {
			out[fmt.Sprintf("%v", k.Interface())] = v.MapIndex(k).Interface()
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]interface{})
		typ := v.Type()
		for i := 0; i < typ.NumField(); i++ {
			if typ.Field(i).IsExported() {
				out[typ.Field(i).Name] = v.Field(i).Interface()
			}
		}
		return out, true
	}
	return nil, false
}

func cellText(v interface{}) string {
	return runewidth.Truncate(Value(v), maxCellWidth, "…")
}
