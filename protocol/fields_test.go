package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bitFields(types ...BasicType) []Field {
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i] = Field{Name: t.String(), Type: t}
	}
	return fields
}

func boolArgs(values ...bool) []interface{} {
	args := make([]interface{}, len(values))
	for i := range values {
		args[i] = &values[i]
	}
	return args
}

func TestBitRunOfNinePacksIntoTwoOctets(t *testing.T) {
	fields := bitFields(TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit)
	layout := compileLayout(fields)
	assert.True(t, layout.static)
	assert.Equal(t, 2, layout.staticSize)

	in := []bool{true, false, true, false, false, false, false, true, true}
	encoded, err := layout.encode(nil, boolArgs(in...))
	require.NoError(t, err)
	// first field is the low-order bit
	assert.Equal(t, []byte{0x85, 0x01}, encoded)

	out := make([]bool, len(in))
	require.NoError(t, layout.decode(newCursor(encoded, 0), boolArgs(out...)))
	assert.Equal(t, in, out)
}

func TestBitRunSplitByOctet(t *testing.T) {
	// bit, bit, octet, then seven bits: two bits before the octet, seven after
	fields := bitFields(TypeBit, TypeBit, TypeOctet, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit, TypeBit)
	layout := compileLayout(fields)
	assert.Equal(t, 3, layout.staticSize)

	bits := []bool{true, true, false, true, false, true, false, true, true}
	octet := uint8(0x7F)
	args := []interface{}{&bits[0], &bits[1], &octet}
	for i := 2; i < len(bits); i++ {
		args = append(args, &bits[i])
	}

	encoded, err := layout.encode(nil, args)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x7F, 0x6A}, encoded)

	outBits := make([]bool, len(bits))
	var outOctet uint8
	outArgs := []interface{}{&outBits[0], &outBits[1], &outOctet}
	for i := 2; i < len(outBits); i++ {
		outArgs = append(outArgs, &outBits[i])
	}
	require.NoError(t, layout.decode(newCursor(encoded, 0), outArgs))
	assert.Equal(t, bits, outBits)
	assert.Equal(t, octet, outOctet)
}

func TestLayoutStaticFlags(t *testing.T) {
	fixed := compileLayout([]Field{
		{Name: "a", Type: TypeShort},
		{Name: "b", Type: TypeLongLong},
		{Name: "c", Type: TypeBit},
	})
	assert.True(t, fixed.static)
	assert.False(t, fixed.constant)
	assert.Equal(t, 11, fixed.staticSize)

	variable := compileLayout([]Field{
		{Name: "a", Type: TypeShort, Reserved: true},
		{Name: "b", Type: TypeShortStr},
	})
	assert.False(t, variable.static)
	assert.Equal(t, 2, variable.staticSize)
	assert.Equal(t, 1, variable.args)

	reserved := compileLayout([]Field{
		{Name: "r1", Type: TypeShortStr, Reserved: true},
		{Name: "r2", Type: TypeLongStr, Reserved: true},
		{Name: "r3", Type: TypeBit, Reserved: true},
	})
	assert.True(t, reserved.static)
	assert.True(t, reserved.constant)
	assert.Equal(t, 6, reserved.staticSize)

	encoded, err := reserved.encode(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, encoded)
}

func TestLayoutDecodeTruncated(t *testing.T) {
	layout := compileLayout([]Field{{Name: "count", Type: TypeLong}})
	var v uint32
	err := layout.decode(newCursor([]byte{0, 1}, 0), []interface{}{&v})
	assert.Error(t, err)
}

func TestBasicTypeString(t *testing.T) {
	assert.Equal(t, "shortstr", TypeShortStr.String())
	assert.Equal(t, "BasicType(99)", BasicType(99).String())
}
