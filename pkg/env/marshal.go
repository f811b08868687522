package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv reflects over the struct pointers and renders .env content
// from their `env` tags. Zero values are skipped, so defaults declared with
// envDefault stay in effect. Values with spaces, quotes or '#' are quoted.
func MarshalEnv(configs ...any) (string, error) {
	var lines []string
	for _, c := range configs {
		v := reflect.ValueOf(c)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			return "", fmt.Errorf("marshal env: expected pointer to struct, got %T", c)
		}
		v = v.Elem()
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("env")
			if tag == "" || !field.IsExported() {
				continue
			}

			// "KEY,required,notEmpty" -> "KEY"
			key := strings.Split(tag, ",")[0]
			if key == "" {
				continue
			}

			val := v.Field(i)
			if val.IsZero() {
				continue
			}

			sep := field.Tag.Get("envSeparator")
			if sep == "" {
				sep = ","
			}
			lines = append(lines, fmt.Sprintf("%s=%s", key, quote(formatValue(val, sep))))
		}
	}

	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t#\"'") {
		return strconv.Quote(s)
	}
	return s
}

func formatValue(v reflect.Value, sep string) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = formatValue(v.Index(i), sep)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
