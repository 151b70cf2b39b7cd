package protocol

import (
	"fmt"
	"time"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// BasicType is an AMQP 0-9-1 argument type.
type BasicType uint8

const (
	TypeBit BasicType = iota + 1
	TypeOctet
	TypeShort
	TypeLong
	TypeLongLong
	TypeTimestamp
	TypeShortStr
	TypeLongStr
	TypeTable
)

func (t BasicType) String() string {
	switch t {
	case TypeBit:
		return "bit"
	case TypeOctet:
		return "octet"
	case TypeShort:
		return "short"
	case TypeLong:
		return "long"
	case TypeLongLong:
		return "longlong"
	case TypeTimestamp:
		return "timestamp"
	case TypeShortStr:
		return "shortstr"
	case TypeLongStr:
		return "longstr"
	case TypeTable:
		return "table"
	}
	return fmt.Sprintf("BasicType(%d)", uint8(t))
}

// fixedSize returns the encoded width of fixed-width types and 0 for bits and
// variable-length types.
func (t BasicType) fixedSize() int {
	switch t {
	case TypeOctet:
		return 1
	case TypeShort:
		return 2
	case TypeLong:
		return 4
	case TypeLongLong, TypeTimestamp:
		return 8
	}
	return 0
}

func (t BasicType) variable() bool {
	return t == TypeShortStr || t == TypeLongStr || t == TypeTable
}

// Field describes one argument of a method or one content property.
type Field struct {
	Name     string
	Domain   string
	Type     BasicType
	Reserved bool
}

// fieldStep is one compiled step of an argument layout.
type fieldStep struct {
	field Field
	arg   int // index into arguments(), -1 for reserved fields
	bit   uint8
	// newByte marks the first bit of a packed run.
	newByte bool
}

// argumentLayout is the compiled encode/decode plan for a field list.
type argumentLayout struct {
	steps []fieldStep
	// staticSize is the size of everything except variable-length arguments.
	staticSize int
	// static means the size never depends on argument values.
	static bool
	// constant means there are no non-reserved fields at all.
	constant bool
	args     int
}

// compileLayout derives bit-packing boundaries and size information from the
// declared field order. Consecutive bit fields share an octet, eight at most;
// any other field closes the run.
func compileLayout(fields []Field) argumentLayout {
	l := argumentLayout{static: true, constant: true}
	bitsInRun := 0
	for _, f := range fields {
		step := fieldStep{field: f, arg: -1}
		if !f.Reserved {
			step.arg = l.args
			l.args++
			l.constant = false
		}
		if f.Type == TypeBit {
			if bitsInRun == 0 || bitsInRun == 8 {
				step.newByte = true
				bitsInRun = 0
				l.staticSize++
			}
			step.bit = uint8(bitsInRun)
			bitsInRun++
		} else {
			bitsInRun = 0
			switch {
			case f.Reserved && f.Type == TypeShortStr:
				l.staticSize++
			case f.Reserved && f.Type == TypeLongStr, f.Reserved && f.Type == TypeTable:
				l.staticSize += 4
			case f.Type.variable():
				l.static = false
			default:
				l.staticSize += f.Type.fixedSize()
			}
		}
		l.steps = append(l.steps, step)
	}
	return l
}

// size returns the encoded length of the arguments.
func (l *argumentLayout) size(args []interface{}) (int, error) {
	if l.static {
		return l.staticSize, nil
	}
	size := l.staticSize
	for _, s := range l.steps {
		if s.arg < 0 || !s.field.Type.variable() {
			continue
		}
		switch s.field.Type {
		case TypeShortStr:
			v := *args[s.arg].(*string)
			if len(v) > 255 {
				return 0, amqperrors.NewShortStringTooLong(s.field.Name, len(v))
			}
			size += 1 + len(v)
		case TypeLongStr:
			size += 4 + len(*args[s.arg].(*string))
		case TypeTable:
			n, err := TableSize(*args[s.arg].(*Table))
			if err != nil {
				return 0, fmt.Errorf("%s: %w", s.field.Name, err)
			}
			size += n
		}
	}
	return size, nil
}

// encode appends the arguments in declared order.
func (l *argumentLayout) encode(buf []byte, args []interface{}) ([]byte, error) {
	var err error
	bitsAt := -1
	for _, s := range l.steps {
		if s.field.Type == TypeBit {
			if s.newByte {
				buf = append(buf, 0)
				bitsAt = len(buf) - 1
			}
			if s.arg >= 0 && *args[s.arg].(*bool) {
				buf[bitsAt] |= 1 << s.bit
			}
			continue
		}
		if s.arg < 0 {
			buf = appendZero(buf, s.field.Type)
			continue
		}
		switch p := args[s.arg].(type) {
		case *uint8:
			buf = append(buf, *p)
		case *uint16:
			buf = appendUint16(buf, *p)
		case *uint32:
			buf = appendUint32(buf, *p)
		case *uint64:
			buf = appendUint64(buf, *p)
		case *time.Time:
			buf = appendTimestamp(buf, *p)
		case *string:
			if s.field.Type == TypeShortStr {
				if buf, err = appendShortString(buf, s.field.Name, *p); err != nil {
					return buf, err
				}
			} else {
				buf = appendLongString(buf, *p)
			}
		case *Table:
			if buf, err = EncodeTable(buf, *p); err != nil {
				return buf, fmt.Errorf("%s: %w", s.field.Name, err)
			}
		default:
			return buf, amqperrors.NewUnsupportedValue(s.field.Name, p)
		}
	}
	return buf, nil
}

// decode fills args from c, consuming exactly the encoded arguments.
func (l *argumentLayout) decode(c *cursor, args []interface{}) error {
	var bits uint8
	for _, s := range l.steps {
		name := s.field.Name
		if s.field.Type == TypeBit {
			if s.newByte {
				b, err := c.octet(name)
				if err != nil {
					return err
				}
				bits = b
			}
			if s.arg >= 0 {
				*args[s.arg].(*bool) = bits&(1<<s.bit) != 0
			}
			continue
		}
		if s.arg < 0 {
			if err := skipValue(c, s.field); err != nil {
				return err
			}
			continue
		}
		var err error
		switch p := args[s.arg].(type) {
		case *uint8:
			*p, err = c.octet(name)
		case *uint16:
			*p, err = c.short(name)
		case *uint32:
			*p, err = c.long(name)
		case *uint64:
			*p, err = c.longlong(name)
		case *time.Time:
			*p, err = c.timestamp(name)
		case *string:
			if s.field.Type == TypeShortStr {
				*p, err = c.shortString(name)
			} else {
				*p, err = c.longString(name)
			}
		case *Table:
			*p, err = readTable(c)
		default:
			err = amqperrors.NewSyntaxError(fmt.Sprintf("unsupported argument %s", name))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func appendZero(buf []byte, t BasicType) []byte {
	switch t {
	case TypeShortStr:
		return append(buf, 0)
	case TypeLongStr, TypeTable:
		return appendUint32(buf, 0)
	}
	for i := 0; i < t.fixedSize(); i++ {
		buf = append(buf, 0)
	}
	return buf
}

func skipValue(c *cursor, f Field) error {
	var err error
	switch f.Type {
	case TypeShortStr:
		_, err = c.shortString(f.Name)
	case TypeLongStr, TypeTable:
		_, err = c.longBytes(f.Name)
	default:
		_, err = c.take(f.Type.fixedSize(), f.Name)
	}
	return err
}
