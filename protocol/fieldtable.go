package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Table is an AMQP field table. Values must be one of the Go types listed in
// EncodeFieldValue.
type Table map[string]interface{}

// Decimal is an AMQP decimal value: Value / 10^Scale.
type Decimal struct {
	Scale uint8
	Value int32
}

// Float64 returns the decimal as a float.
func (d Decimal) Float64() float64 {
	return float64(d.Value) / math.Pow10(int(d.Scale))
}

func (d Decimal) String() string {
	return fmt.Sprintf("%g", d.Float64())
}

const decimalTolerance = 1e-5

// ParseDecimal finds the smallest scale in [0,20) whose mantissa reproduces f
// within 1e-5. It fails when no such scale fits a signed 32-bit mantissa.
func ParseDecimal(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, amqperrors.NewEncodeError("decimal", fmt.Sprintf("cannot represent %v", f))
	}
	for scale := 0; scale < 20; scale++ {
		pow := math.Pow10(scale)
		mantissa := math.Round(f * pow)
		if mantissa > math.MaxInt32 || mantissa < math.MinInt32 {
			break
		}
		if math.Abs(mantissa/pow-f) < decimalTolerance {
			return Decimal{Scale: uint8(scale), Value: int32(mantissa)}, nil
		}
	}
	return Decimal{}, amqperrors.NewEncodeError("decimal", fmt.Sprintf("no exact scale for %v", f))
}

// Field value type tags as RabbitMQ and other brokers read them. This differs
// from the 0-9-1 grammar: 's' is a signed short and 'l' a signed long long.
// There is no short string or unsigned long long tag.
const (
	tagBoolean   = 't'
	tagInt8      = 'b'
	tagUint8     = 'B'
	tagInt16     = 's'
	tagUint16    = 'u'
	tagInt32     = 'I'
	tagUint32    = 'i'
	tagInt64     = 'l'
	tagFloat32   = 'f'
	tagFloat64   = 'd'
	tagDecimal   = 'D'
	tagLongStr   = 'S'
	tagArray     = 'A'
	tagTimestamp = 'T'
	tagTable     = 'F'
	tagVoid      = 'V'
	tagBytes     = 'x'

	// Grammar spellings of the signed short and long long, accepted on decode.
	tagGrammarInt16 = 'U'
	tagGrammarInt64 = 'L'
)

// EncodeTable appends the length-prefixed encoding of t to buf.
// Keys are written in sorted order so that the encoding is deterministic.
func EncodeTable(buf []byte, t Table) ([]byte, error) {
	size, err := tableContentSize(t)
	if err != nil {
		return buf, err
	}
	buf = appendUint32(buf, uint32(size))
	for _, key := range sortedKeys(t) {
		if buf, err = appendShortString(buf, "table key", key); err != nil {
			return buf, err
		}
		if buf, err = EncodeFieldValue(buf, t[key]); err != nil {
			return buf, fmt.Errorf("table key %q: %w", key, err)
		}
	}
	return buf, nil
}

// TableSize returns len(EncodeTable(nil, t)).
func TableSize(t Table) (int, error) {
	size, err := tableContentSize(t)
	return 4 + size, err
}

func tableContentSize(t Table) (int, error) {
	size := 0
	for key, value := range t {
		if len(key) > 255 {
			return 0, amqperrors.NewShortStringTooLong("table key", len(key))
		}
		n, err := FieldValueSize(value)
		if err != nil {
			return 0, fmt.Errorf("table key %q: %w", key, err)
		}
		size += 1 + len(key) + n
	}
	return size, nil
}

// DecodeTable reads a table starting at offset and returns it together with the
// number of bytes consumed.
func DecodeTable(buf []byte, offset int) (Table, int, error) {
	c := newCursor(buf, offset)
	t, err := readTable(c)
	return t, c.off - offset, err
}

func readTable(c *cursor) (Table, error) {
	body, err := c.longBytes("table")
	if err != nil {
		return nil, err
	}
	inner := newCursor(body, 0)
	t := make(Table)
	for inner.remaining() > 0 {
		key, err := inner.shortString("table key")
		if err != nil {
			return nil, err
		}
		value, err := readFieldValue(inner)
		if err != nil {
			return nil, err
		}
		t[key] = value
	}
	return t, nil
}

// EncodeArray appends a length-prefixed field array.
func EncodeArray(buf []byte, values []interface{}) ([]byte, error) {
	size, err := arrayContentSize(values)
	if err != nil {
		return buf, err
	}
	buf = appendUint32(buf, uint32(size))
	for _, v := range values {
		if buf, err = EncodeFieldValue(buf, v); err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// ArraySize returns len(EncodeArray(nil, values)).
func ArraySize(values []interface{}) (int, error) {
	size, err := arrayContentSize(values)
	return 4 + size, err
}

func arrayContentSize(values []interface{}) (int, error) {
	size := 0
	for _, v := range values {
		n, err := FieldValueSize(v)
		if err != nil {
			return 0, err
		}
		size += n
	}
	return size, nil
}

// DecodeArray reads a field array starting at offset.
func DecodeArray(buf []byte, offset int) ([]interface{}, int, error) {
	c := newCursor(buf, offset)
	a, err := readArray(c)
	return a, c.off - offset, err
}

func readArray(c *cursor) ([]interface{}, error) {
	body, err := c.longBytes("array")
	if err != nil {
		return nil, err
	}
	inner := newCursor(body, 0)
	values := make([]interface{}, 0)
	for inner.remaining() > 0 {
		v, err := readFieldValue(inner)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// EncodeFieldValue appends a tagged field value. Supported Go types:
//
//	bool, int8, uint8, int16, uint16, int32, uint32, int64, uint64, int,
//	float32, float64, Decimal, string, []byte, []interface{},
//	time.Time, Table, map[string]interface{}, nil
//
// int is widened to int64. A uint64 is sent as int64 and must fit in one.
func EncodeFieldValue(buf []byte, v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case bool:
		b := byte(0)
		if val {
			b = 1
		}
		return append(buf, tagBoolean, b), nil
	case int8:
		return append(buf, tagInt8, byte(val)), nil
	case uint8:
		return append(buf, tagUint8, val), nil
	case int16:
		return appendUint16(append(buf, tagInt16), uint16(val)), nil
	case uint16:
		return appendUint16(append(buf, tagUint16), val), nil
	case int32:
		return appendUint32(append(buf, tagInt32), uint32(val)), nil
	case uint32:
		return appendUint32(append(buf, tagUint32), val), nil
	case int64:
		return appendUint64(append(buf, tagInt64), uint64(val)), nil
	case int:
		return appendUint64(append(buf, tagInt64), uint64(int64(val))), nil
	case uint64:
		if val > math.MaxInt64 {
			return buf, amqperrors.NewEncodeError("field value", fmt.Sprintf("uint64 %d overflows a signed long long", val))
		}
		return appendUint64(append(buf, tagInt64), val), nil
	case float32:
		return appendUint32(append(buf, tagFloat32), math.Float32bits(val)), nil
	case float64:
		return appendUint64(append(buf, tagFloat64), math.Float64bits(val)), nil
	case Decimal:
		return appendUint32(append(buf, tagDecimal, val.Scale), uint32(val.Value)), nil
	case string:
		return appendLongString(append(buf, tagLongStr), val), nil
	case []byte:
		buf = appendUint32(append(buf, tagBytes), uint32(len(val)))
		return append(buf, val...), nil
	case []interface{}:
		return EncodeArray(append(buf, tagArray), val)
	case time.Time:
		return appendTimestamp(append(buf, tagTimestamp), val), nil
	case Table:
		return EncodeTable(append(buf, tagTable), val)
	case map[string]interface{}:
		return EncodeTable(append(buf, tagTable), Table(val))
	case nil:
		return append(buf, tagVoid), nil
	default:
		return buf, amqperrors.NewUnsupportedValue("field value", v)
	}
}

// FieldValueSize returns the encoded size of a tagged field value, tag included.
func FieldValueSize(v interface{}) (int, error) {
	switch val := v.(type) {
	case bool, int8, uint8:
		return 2, nil
	case int16, uint16:
		return 3, nil
	case int32, uint32, float32:
		return 5, nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, amqperrors.NewEncodeError("field value", fmt.Sprintf("uint64 %d overflows a signed long long", val))
		}
		return 9, nil
	case int64, int, float64, time.Time:
		return 9, nil
	case Decimal:
		return 6, nil
	case string:
		return 5 + len(val), nil
	case []byte:
		return 5 + len(val), nil
	case []interface{}:
		n, err := ArraySize(val)
		return 1 + n, err
	case Table:
		n, err := TableSize(val)
		return 1 + n, err
	case map[string]interface{}:
		n, err := TableSize(Table(val))
		return 1 + n, err
	case nil:
		return 1, nil
	default:
		return 0, amqperrors.NewUnsupportedValue("field value", v)
	}
}

// DecodeFieldValue reads one tagged field value starting at offset.
func DecodeFieldValue(buf []byte, offset int) (interface{}, int, error) {
	c := newCursor(buf, offset)
	v, err := readFieldValue(c)
	return v, c.off - offset, err
}

func readFieldValue(c *cursor) (interface{}, error) {
	tag, err := c.octet("field value tag")
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBoolean:
		b, err := c.octet("boolean")
		return b != 0, err
	case tagInt8:
		b, err := c.octet("int8")
		return int8(b), err
	case tagUint8:
		return c.octet("uint8")
	case tagInt16, tagGrammarInt16:
		v, err := c.short("int16")
		return int16(v), err
	case tagUint16:
		return c.short("uint16")
	case tagInt32:
		v, err := c.long("int32")
		return int32(v), err
	case tagUint32:
		return c.long("uint32")
	case tagInt64, tagGrammarInt64:
		v, err := c.longlong("int64")
		return int64(v), err
	case tagFloat32:
		v, err := c.long("float32")
		return math.Float32frombits(v), err
	case tagFloat64:
		v, err := c.longlong("float64")
		return math.Float64frombits(v), err
	case tagDecimal:
		b, err := c.take(5, "decimal")
		if err != nil {
			return nil, err
		}
		return Decimal{Scale: b[0], Value: int32(binary.BigEndian.Uint32(b[1:]))}, nil
	case tagLongStr:
		return c.longString("long string")
	case tagBytes:
		b, err := c.longBytes("byte array")
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), b...), nil
	case tagArray:
		return readArray(c)
	case tagTimestamp:
		return c.timestamp("timestamp")
	case tagTable:
		return readTable(c)
	case tagVoid:
		return nil, nil
	default:
		return nil, amqperrors.NewSyntaxError(fmt.Sprintf("unknown field value type %q", tag))
	}
}

func sortedKeys(t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
