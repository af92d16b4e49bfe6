// Package codec converts scalar Go values to and from the byte layouts stored in
// wide-column cells.
//
// The layouts match the ones HBase clients produce with Bytes.toBytes, so rows
// written by other clients decode unchanged:
//
//	string        UTF-8
//	time.Time     int64 epoch milliseconds, big-endian
//	bool          1 byte, 0xFF true, 0x00 false (any non-zero byte decodes as true)
//	int16         2 bytes big-endian
//	int32         4 bytes big-endian
//	int64, int    8 bytes big-endian
//	float32       IEEE-754 bits, 4 bytes big-endian
//	float64       IEEE-754 bits, 8 bytes big-endian
//	Decimal       4 byte scale followed by the two's-complement unscaled value
//	[]byte        identity
//
// Every other value falls back to MessagePack. A nil pointer encodes to nil, and
// nil bytes decode to the zero value of the requested type.
package codec

import (
	"encoding/binary"
	"math"
	"reflect"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	boolTrue  byte = 0xFF
	boolFalse byte = 0x00
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(Decimal{})
)

// Encode returns the stored byte form of v.
func Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return EncodeValue(reflect.ValueOf(v))
}

// EncodeValue is Encode for a value already held as a reflect.Value.
func EncodeValue(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return EncodeValue(v.Elem())
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		// an interface type always decodes through msgpack
		return marshalFallback(v)
	}

	switch v.Type() {
	case timeType:
		return EncodeTime(v.Interface().(time.Time)), nil
	case decimalType:
		return v.Interface().(Decimal).Bytes(), nil
	}

	switch v.Kind() {
	case reflect.String:
		return []byte(v.String()), nil
	case reflect.Bool:
		if v.Bool() {
			return []byte{boolTrue}, nil
		}
		return []byte{boolFalse}, nil
	case reflect.Int16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v.Int()))
		return b, nil
	case reflect.Int32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.Int()))
		return b, nil
	case reflect.Int64, reflect.Int:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v.Int()))
		return b, nil
	case reflect.Float32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v.Float())))
		return b, nil
	case reflect.Float64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v.Float()))
		return b, nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), nil
		}
	}

	return marshalFallback(v)
}

// Decode reads b as a value of type t.
func Decode(b []byte, t reflect.Type) (any, error) {
	if t == nil {
		return nil, newError(ErrUnsupported, "nil target type")
	}
	v := reflect.New(t).Elem()
	if err := DecodeInto(b, v); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// DecodeInto reads b into v, which must be settable.
func DecodeInto(b []byte, v reflect.Value) error {
	t := v.Type()
	if b == nil {
		v.Set(reflect.Zero(t))
		return nil
	}

	if t.Kind() == reflect.Pointer {
		elem := reflect.New(t.Elem())
		if err := DecodeInto(b, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	switch t {
	case timeType:
		if len(b) != 8 {
			return newError(ErrInvalidLength, "time needs 8 bytes, got %d", len(b))
		}
		v.Set(reflect.ValueOf(DecodeTime(b)))
		return nil
	case decimalType:
		d, err := DecimalFromBytes(b)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(d))
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(string(b))
		return nil
	case reflect.Bool:
		if len(b) != 1 {
			return newError(ErrInvalidLength, "bool needs 1 byte, got %d", len(b))
		}
		v.SetBool(b[0] != boolFalse)
		return nil
	case reflect.Int16:
		if len(b) != 2 {
			return newError(ErrInvalidLength, "%s needs 2 bytes, got %d", t, len(b))
		}
		v.SetInt(int64(int16(binary.BigEndian.Uint16(b))))
		return nil
	case reflect.Int32:
		if len(b) != 4 {
			return newError(ErrInvalidLength, "%s needs 4 bytes, got %d", t, len(b))
		}
		v.SetInt(int64(int32(binary.BigEndian.Uint32(b))))
		return nil
	case reflect.Int64, reflect.Int:
		if len(b) != 8 {
			return newError(ErrInvalidLength, "%s needs 8 bytes, got %d", t, len(b))
		}
		v.SetInt(int64(binary.BigEndian.Uint64(b)))
		return nil
	case reflect.Float32:
		if len(b) != 4 {
			return newError(ErrInvalidLength, "%s needs 4 bytes, got %d", t, len(b))
		}
		v.SetFloat(float64(math.Float32frombits(binary.BigEndian.Uint32(b))))
		return nil
	case reflect.Float64:
		if len(b) != 8 {
			return newError(ErrInvalidLength, "%s needs 8 bytes, got %d", t, len(b))
		}
		v.SetFloat(math.Float64frombits(binary.BigEndian.Uint64(b)))
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			out := reflect.MakeSlice(t, len(b), len(b))
			reflect.Copy(out, reflect.ValueOf(b))
			v.Set(out)
			return nil
		}
	}

	return unmarshalFallback(b, v)
}

// EncodeTime returns t as 8 big-endian bytes of epoch milliseconds. Precision
// below one millisecond is dropped.
func EncodeTime(t time.Time) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t.UnixMilli()))
	return b
}

// DecodeTime reads 8 big-endian bytes of epoch milliseconds as a UTC time.
func DecodeTime(b []byte) time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(b))).UTC()
}

func unsupportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func marshalFallback(v reflect.Value) ([]byte, error) {
	if unsupportedKind(v.Kind()) {
		return nil, newError(ErrUnsupported, "cannot encode %s", v.Type())
	}
	b, err := msgpack.Marshal(v.Interface())
	if err != nil {
		return nil, newError(ErrUnsupported, "msgpack %s: %v", v.Type(), err)
	}
	return b, nil
}

func unmarshalFallback(b []byte, v reflect.Value) error {
	t := v.Type()
	if unsupportedKind(t.Kind()) {
		return newError(ErrUnsupported, "cannot decode %s", t)
	}
	target := reflect.New(t)
	if err := msgpack.Unmarshal(b, target.Interface()); err != nil {
		return newError(ErrUnsupported, "msgpack %s: %v", t, err)
	}
	v.Set(target.Elem())
	return nil
}
