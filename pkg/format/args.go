// Package format renders console entries into terminal fragments and the
// plain-text projection used for filtering and repeat detection.
package format

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Args joins log arguments the way a console does: a leading string may
// carry %s, %d, %i, %f, %o, %O, %j and %c directives consumed by the
// following arguments; the rest are appended space separated.
func Args(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}

	var parts []string
	rest := args
	if format, ok := args[0].(string); ok && strings.Contains(format, "%") {
		var consumed int
		parts = append(parts, substitute(format, args[1:], &consumed))
		rest = args[1+consumed:]
	} else {
		parts = append(parts, Value(args[0]))
		rest = args[1:]
	}
	for _, arg := range rest {
		parts = append(parts, Value(arg))
	}
	return strings.Join(parts, " ")
}

func substitute(format string, args []interface{}, consumed *int) string {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' || i+1 >= len(format) {
			sb.WriteByte(ch)
			continue
		}
		verb := format[i+1]
		if verb == '%' {
			sb.WriteByte('%')
			i++
			continue
		}
		if !strings.ContainsRune("sdifoOjc", rune(verb)) {
			sb.WriteByte(ch)
			continue
		}
		i++
		if *consumed >= len(args) {
			sb.WriteByte('%')
			sb.WriteByte(verb)
			continue
		}
		arg := args[*consumed]
		*consumed++
		switch verb {
		case 's':
			sb.WriteString(Value(arg))
		case 'd', 'i':
			sb.WriteString(integer(arg))
		case 'f':
			sb.WriteString(float(arg))
		case 'o', 'O', 'j':
			sb.WriteString(Inline(arg))
		case 'c':
			// css directives have no terminal meaning
		}
	}
	return sb.String()
}

func integer(v interface{}) string {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n)
	case float32:
		return strconv.FormatInt(int64(n), 10)
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case string:
		if i, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return strconv.FormatInt(int64(i), 10)
		}
	}
	return "NaN"
}

func float(v interface{}) string {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return "NaN"
}

// Value renders a single argument. Strings are printed raw, nested values
// as single-line JSON.
func Value(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		return Inline(v)
	}
	return fmt.Sprintf("%v", v)
}

// Inline renders v as compact JSON, falling back to Go syntax
func Inline(v interface{}) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

// Indented renders v as indented JSON for dir entries
func Indented(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
