package codec

import (
	"encoding/binary"
	"math/big"
	"strings"
)

// Decimal is an arbitrary precision decimal number: unscaled * 10^-scale.
//
// The zero value is 0 with scale 0.
type Decimal struct {
	unscaled *big.Int
	scale    int32
}

// NewDecimal returns unscaled * 10^-scale. The integer is copied.
func NewDecimal(unscaled *big.Int, scale int32) Decimal {
	u := new(big.Int)
	if unscaled != nil {
		u.Set(unscaled)
	}
	return Decimal{unscaled: u, scale: scale}
}

// DecimalFromInt is NewDecimal for an int64 unscaled value.
func DecimalFromInt(unscaled int64, scale int32) Decimal {
	return Decimal{unscaled: big.NewInt(unscaled), scale: scale}
}

// ParseDecimal parses a plain decimal string such as "-12.340". The scale is
// the number of digits after the point, so trailing zeros are kept.
func ParseDecimal(s string) (Decimal, error) {
	raw := strings.TrimSpace(s)
	digits := raw
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}

	intPart, fracPart, _ := strings.Cut(digits, ".")
	if intPart == "" && fracPart == "" {
		return Decimal{}, newError(ErrInvalidText, "decimal %q", s)
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Decimal{}, newError(ErrInvalidText, "decimal %q", s)
		}
	}

	u, ok := new(big.Int).SetString("0"+intPart+fracPart, 10)
	if !ok {
		return Decimal{}, newError(ErrInvalidText, "decimal %q", s)
	}
	if strings.HasPrefix(raw, "-") {
		u.Neg(u)
	}
	return Decimal{unscaled: u, scale: int32(len(fracPart))}, nil
}

// Unscaled returns a copy of the unscaled integer.
func (d Decimal) Unscaled() *big.Int {
	return new(big.Int).Set(d.int())
}

// Scale returns the number of decimal digits to the right of the point.
func (d Decimal) Scale() int32 {
	return d.scale
}

// Cmp compares d and o numerically, ignoring differences in scale.
func (d Decimal) Cmp(o Decimal) int {
	a, b := d.int(), o.int()
	switch {
	case d.scale < o.scale:
		a = rescale(a, o.scale-d.scale)
	case o.scale < d.scale:
		b = rescale(b, d.scale-o.scale)
	}
	return a.Cmp(b)
}

// String returns the plain decimal notation of d.
func (d Decimal) String() string {
	u := d.int()
	neg := u.Sign() < 0
	digits := new(big.Int).Abs(u).String()

	switch {
	case d.scale < 0:
		digits += strings.Repeat("0", int(-d.scale))
	case d.scale > 0:
		scale := int(d.scale)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if neg {
		return "-" + digits
	}
	return digits
}

// Bytes returns the stored layout: a 4 byte big-endian scale followed by the
// minimal two's-complement big-endian form of the unscaled value.
func (d Decimal) Bytes() []byte {
	unscaled := twosComplement(d.int())
	b := make([]byte, 4, 4+len(unscaled))
	binary.BigEndian.PutUint32(b, uint32(d.scale))
	return append(b, unscaled...)
}

// DecimalFromBytes reads the layout produced by Decimal.Bytes.
func DecimalFromBytes(b []byte) (Decimal, error) {
	if len(b) < 5 {
		return Decimal{}, newError(ErrInvalidLength, "decimal needs at least 5 bytes, got %d", len(b))
	}
	scale := int32(binary.BigEndian.Uint32(b[:4]))
	return Decimal{unscaled: fromTwosComplement(b[4:]), scale: scale}, nil
}

func (d Decimal) int() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return d.unscaled
}

func rescale(u *big.Int, by int32) *big.Int {
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(by)), nil)
	return new(big.Int).Mul(u, factor)
}

func twosComplement(x *big.Int) []byte {
	if x.Sign() >= 0 {
		b := x.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}

	// -x-1 has the same bits as x, inverted
	m := new(big.Int).Neg(x)
	m.Sub(m, big.NewInt(1))
	b := m.Bytes()
	for i := range b {
		b[i] = ^b[i]
	}
	if len(b) == 0 || b[0]&0x80 == 0 {
		b = append([]byte{0xFF}, b...)
	}
	return b
}

func fromTwosComplement(b []byte) *big.Int {
	if b[0]&0x80 == 0 {
		return new(big.Int).SetBytes(b)
	}
	inv := make([]byte, len(b))
	for i := range b {
		inv[i] = ^b[i]
	}
	x := new(big.Int).SetBytes(inv)
	x.Add(x, big.NewInt(1))
	return x.Neg(x)
}
