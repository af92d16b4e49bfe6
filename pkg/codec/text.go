package codec

import (
	"encoding/hex"
	"reflect"
	"strconv"
	"time"
)

// FormatText returns the textual form of v used when a collection element is
// stored inside a qualifier name rather than a cell value.
//
// Strings are returned verbatim, so parsing the qualifier remainder of a string
// element is the same as decoding its bytes.
func FormatText(v any) (string, error) {
	if v == nil {
		return "", newError(ErrUnsupported, "nil has no textual form")
	}
	return FormatValue(reflect.ValueOf(v))
}

// FormatValue is FormatText for a reflect.Value.
func FormatValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "", newError(ErrUnsupported, "nil %s has no textual form", v.Type())
		}
		return FormatValue(v.Elem())
	}

	switch v.Type() {
	case timeType:
		return v.Interface().(time.Time).UTC().Format(time.RFC3339Nano), nil
	case decimalType:
		return v.Interface().(Decimal).String(), nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return hex.EncodeToString(v.Bytes()), nil
		}
	}
	return "", newError(ErrUnsupported, "%s has no textual form", v.Type())
}

// ParseText parses s, produced by FormatText, as a value of type t.
func ParseText(s string, t reflect.Type) (any, error) {
	if t == nil {
		return nil, newError(ErrUnsupported, "nil target type")
	}
	v := reflect.New(t).Elem()
	if err := ParseTextInto(s, v); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// ParseTextInto parses s into the settable value v.
func ParseTextInto(s string, v reflect.Value) error {
	t := v.Type()
	if t.Kind() == reflect.Pointer {
		elem := reflect.New(t.Elem())
		if err := ParseTextInto(s, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	switch t {
	case timeType:
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return newError(ErrInvalidText, "time %q: %v", s, err)
		}
		v.Set(reflect.ValueOf(ts.UTC()))
		return nil
	case decimalType:
		d, err := ParseDecimal(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(d))
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return newError(ErrInvalidText, "bool %q", s)
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return newError(ErrInvalidText, "%s %q", t, s)
		}
		v.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return newError(ErrInvalidText, "%s %q", t, s)
		}
		v.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return newError(ErrInvalidText, "%s %q", t, s)
		}
		v.SetFloat(f)
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := hex.DecodeString(s)
			if err != nil {
				return newError(ErrInvalidText, "hex %q", s)
			}
			out := reflect.MakeSlice(t, len(b), len(b))
			reflect.Copy(out, reflect.ValueOf(b))
			v.Set(out)
			return nil
		}
	}
	return newError(ErrUnsupported, "%s has no textual form", t)
}
