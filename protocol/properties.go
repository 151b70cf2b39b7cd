package protocol

import (
	"fmt"
	"sync"
	"time"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// PropertyFlags is the logical presence set of a content-property list:
// bit i is set when property i is present. On the wire these bits are spread
// over 15-bit flag words, see appendFlagWords.
type PropertyFlags uint64

// Has reports whether property index i is present.
func (f PropertyFlags) Has(i int) bool {
	return f&(1<<uint(i)) != 0
}

// maxProperties is the largest property list PropertyFlags can describe.
const maxProperties = 64

// ContentClass is the property schema of a class that carries content.
type ContentClass struct {
	ClassID    uint16
	Name       string
	Properties []Field

	bitMask PropertyFlags
	allMask PropertyFlags
}

// NewContentClass builds a property schema. Bit properties carry their value in
// the flag word and never contribute value bytes.
func NewContentClass(classID uint16, name string, properties []Field) *ContentClass {
	if len(properties) > maxProperties {
		panic(fmt.Sprintf("protocol: class %s has %d properties", name, len(properties)))
	}
	c := &ContentClass{ClassID: classID, Name: name, Properties: properties}
	for i, f := range properties {
		c.allMask |= 1 << uint(i)
		if f.Type == TypeBit {
			c.bitMask |= 1 << uint(i)
		}
	}
	return c
}

// ZeroFlags clears the bit-typed properties from flags. The result is the
// specialization key of a property layout.
func (c *ContentClass) ZeroFlags(flags PropertyFlags) PropertyFlags {
	return flags & c.allMask &^ c.bitMask
}

// PropertyIndex returns the index of a property by name.
func (c *ContentClass) PropertyIndex(name string) (int, bool) {
	for i, f := range c.Properties {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Basic property indexes
const (
	PropContentType = iota
	PropContentEncoding
	PropHeaders
	PropDeliveryMode
	PropPriority
	PropCorrelationID
	PropReplyTo
	PropExpiration
	PropMessageID
	PropTimestamp
	PropType
	PropUserID
	PropAppID
	PropClusterID
)

// BasicContentClass is the property list of the basic class.
var BasicContentClass = NewContentClass(ClassBasic, "basic", []Field{
	{Name: "content-type", Domain: "shortstr", Type: TypeShortStr},
	{Name: "content-encoding", Domain: "shortstr", Type: TypeShortStr},
	{Name: "headers", Domain: "table", Type: TypeTable},
	{Name: "delivery-mode", Domain: "octet", Type: TypeOctet},
	{Name: "priority", Domain: "octet", Type: TypeOctet},
	{Name: "correlation-id", Domain: "shortstr", Type: TypeShortStr},
	{Name: "reply-to", Domain: "shortstr", Type: TypeShortStr},
	{Name: "expiration", Domain: "shortstr", Type: TypeShortStr},
	{Name: "message-id", Domain: "shortstr", Type: TypeShortStr},
	{Name: "timestamp", Domain: "timestamp", Type: TypeTimestamp},
	{Name: "type", Domain: "shortstr", Type: TypeShortStr},
	{Name: "user-id", Domain: "shortstr", Type: TypeShortStr},
	{Name: "app-id", Domain: "shortstr", Type: TypeShortStr},
	{Name: "reserved", Domain: "shortstr", Type: TypeShortStr, Reserved: true},
})

// flagWordCount returns how many flag words are needed for flags, at least one.
func flagWordCount(flags PropertyFlags) int {
	words := 1
	for i := maxProperties - 1; i >= 0; i-- {
		if flags.Has(i) {
			words = i/15 + 1
			break
		}
	}
	return words
}

// appendFlagWords writes property i into word i/15 at bit 15-i%15. Bit 0 of a
// word is set when another word follows.
func appendFlagWords(buf []byte, flags PropertyFlags) []byte {
	words := flagWordCount(flags)
	for w := 0; w < words; w++ {
		var word uint16
		for j := 0; j < 15; j++ {
			if flags.Has(w*15 + j) {
				word |= 1 << uint(15-j)
			}
		}
		if w < words-1 {
			word |= 1
		}
		buf = appendUint16(buf, word)
	}
	return buf
}

func readFlagWords(c *cursor) (PropertyFlags, error) {
	var flags PropertyFlags
	for base := 0; ; base += 15 {
		if base >= maxProperties {
			return 0, amqperrors.NewSyntaxError("too many property flag words")
		}
		word, err := c.short("property flags")
		if err != nil {
			return 0, err
		}
		for j := 0; j < 15; j++ {
			if word&(1<<uint(15-j)) != 0 && base+j < maxProperties {
				flags |= 1 << uint(base+j)
			}
		}
		if word&1 == 0 {
			return flags, nil
		}
	}
}

// Properties is a sparse content-property list. Presence is tracked in the
// flags; values are indexed by property position.
type Properties struct {
	class  *ContentClass
	flags  PropertyFlags
	values []interface{}
	err    error // first option that failed
}

// PropertyOption sets one property at construction time.
type PropertyOption func(*Properties)

// NewProperties returns an empty property list for class.
func NewProperties(class *ContentClass, opts ...PropertyOption) *Properties {
	p := &Properties{class: class, values: make([]interface{}, len(class.Properties))}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewBasicProperties returns basic-class properties.
//
//	props := NewBasicProperties(WithContentType("application/json"), WithDeliveryMode(2))
func NewBasicProperties(opts ...PropertyOption) *Properties {
	return NewProperties(BasicContentClass, opts...)
}

// Class returns the content class of the list.
func (p *Properties) Class() *ContentClass { return p.class }

// Flags returns the presence set, bit properties included.
func (p *Properties) Flags() PropertyFlags { return p.flags }

// Err returns the error of the first construction option that could not be
// applied. Sizing or encoding such a list fails with the same error.
func (p *Properties) Err() error { return p.err }

// ZeroFlags returns the presence set with bit properties cleared.
func (p *Properties) ZeroFlags() PropertyFlags { return p.class.ZeroFlags(p.flags) }

// Len returns the number of present properties.
func (p *Properties) Len() int {
	n := 0
	for i := range p.values {
		if p.flags.Has(i) {
			n++
		}
	}
	return n
}

// Get returns the value of property i.
func (p *Properties) Get(i int) (interface{}, bool) {
	if i < 0 || i >= len(p.values) || !p.flags.Has(i) {
		return nil, false
	}
	if p.class.Properties[i].Type == TypeBit {
		return true, true
	}
	return p.values[i], true
}

// GetByName returns the value of a property by its AMQP name, e.g. "content-type".
func (p *Properties) GetByName(name string) (interface{}, bool) {
	i, ok := p.class.PropertyIndex(name)
	if !ok {
		return nil, false
	}
	return p.Get(i)
}

// Set stores property i. The value must match the property type: bool for bit,
// uint8/uint16/uint32/uint64 for octet/short/long/longlong, time.Time for
// timestamp, string for shortstr and longstr, Table for table. A false bit
// clears the property.
func (p *Properties) Set(i int, v interface{}) error {
	if i < 0 || i >= len(p.values) {
		return amqperrors.NewEncodeError("properties", fmt.Sprintf("no property %d in class %s", i, p.class.Name))
	}
	f := p.class.Properties[i]
	if !valueMatches(f, v) {
		return amqperrors.NewEncodeError(f.Name, fmt.Sprintf("%T is not a valid %s", v, f.Type))
	}
	if f.Type == TypeShortStr && len(v.(string)) > 255 {
		return amqperrors.NewShortStringTooLong(f.Name, len(v.(string)))
	}
	if f.Type == TypeBit {
		if v.(bool) {
			p.flags |= 1 << uint(i)
		} else {
			p.flags &^= 1 << uint(i)
		}
		return nil
	}
	p.values[i] = v
	p.flags |= 1 << uint(i)
	return nil
}

// SetByName stores a property by its AMQP name.
func (p *Properties) SetByName(name string, v interface{}) error {
	i, ok := p.class.PropertyIndex(name)
	if !ok {
		return amqperrors.NewEncodeError(name, fmt.Sprintf("no property %q in class %s", name, p.class.Name))
	}
	return p.Set(i, v)
}

// Clear removes property i.
func (p *Properties) Clear(i int) {
	if i >= 0 && i < len(p.values) {
		p.values[i] = nil
		p.flags &^= 1 << uint(i)
	}
}

func valueMatches(f Field, v interface{}) bool {
	switch f.Type {
	case TypeBit:
		_, ok := v.(bool)
		return ok
	case TypeOctet:
		_, ok := v.(uint8)
		return ok
	case TypeShort:
		_, ok := v.(uint16)
		return ok
	case TypeLong:
		_, ok := v.(uint32)
		return ok
	case TypeLongLong:
		_, ok := v.(uint64)
		return ok
	case TypeTimestamp:
		_, ok := v.(time.Time)
		return ok
	case TypeShortStr, TypeLongStr:
		_, ok := v.(string)
		return ok
	case TypeTable:
		_, ok := v.(Table)
		return ok
	}
	return false
}

func (p *Properties) str(i int) string {
	if v, ok := p.Get(i); ok {
		return v.(string)
	}
	return ""
}

func (p *Properties) octet(i int) uint8 {
	if v, ok := p.Get(i); ok {
		return v.(uint8)
	}
	return 0
}

func (p *Properties) ContentType() string     { return p.str(PropContentType) }
func (p *Properties) ContentEncoding() string { return p.str(PropContentEncoding) }
func (p *Properties) DeliveryMode() uint8     { return p.octet(PropDeliveryMode) }
func (p *Properties) Priority() uint8         { return p.octet(PropPriority) }
func (p *Properties) CorrelationID() string   { return p.str(PropCorrelationID) }
func (p *Properties) ReplyTo() string         { return p.str(PropReplyTo) }
func (p *Properties) Expiration() string      { return p.str(PropExpiration) }
func (p *Properties) MessageID() string       { return p.str(PropMessageID) }
func (p *Properties) Type() string            { return p.str(PropType) }
func (p *Properties) UserID() string          { return p.str(PropUserID) }
func (p *Properties) AppID() string           { return p.str(PropAppID) }

func (p *Properties) Headers() Table {
	if v, ok := p.Get(PropHeaders); ok {
		return v.(Table)
	}
	return nil
}

func (p *Properties) Timestamp() time.Time {
	if v, ok := p.Get(PropTimestamp); ok {
		return v.(time.Time)
	}
	return time.Time{}
}

// option builds a PropertyOption. A value that does not fit is recorded in
// the list's Err.
func option(i int, v interface{}) PropertyOption {
	return func(p *Properties) {
		if err := p.Set(i, v); err != nil && p.err == nil {
			p.err = err
		}
	}
}

func WithContentType(v string) PropertyOption     { return option(PropContentType, v) }
func WithContentEncoding(v string) PropertyOption { return option(PropContentEncoding, v) }
func WithHeaders(v Table) PropertyOption          { return option(PropHeaders, v) }
func WithDeliveryMode(v uint8) PropertyOption     { return option(PropDeliveryMode, v) }
func WithPriority(v uint8) PropertyOption         { return option(PropPriority, v) }
func WithCorrelationID(v string) PropertyOption   { return option(PropCorrelationID, v) }
func WithReplyTo(v string) PropertyOption         { return option(PropReplyTo, v) }
func WithExpiration(v string) PropertyOption      { return option(PropExpiration, v) }
func WithMessageID(v string) PropertyOption       { return option(PropMessageID, v) }
func WithTimestamp(v time.Time) PropertyOption    { return option(PropTimestamp, v.UTC().Truncate(time.Second)) }
func WithType(v string) PropertyOption            { return option(PropType, v) }
func WithUserID(v string) PropertyOption          { return option(PropUserID, v) }
func WithAppID(v string) PropertyOption           { return option(PropAppID, v) }

// Delivery modes
const (
	Transient  uint8 = 1
	Persistent uint8 = 2
)

// PropertyLayout is the specialized codec for one combination of present
// properties of a class.
type PropertyLayout struct {
	Class     *ContentClass
	ZeroFlags PropertyFlags

	present    []int
	staticSize int
	static     bool
}

func compilePropertyLayout(class *ContentClass, zero PropertyFlags) *PropertyLayout {
	l := &PropertyLayout{Class: class, ZeroFlags: zero, static: true}
	for i, f := range class.Properties {
		if !zero.Has(i) {
			continue
		}
		l.present = append(l.present, i)
		if f.Type.variable() {
			l.static = false
		} else {
			l.staticSize += f.Type.fixedSize()
		}
	}
	return l
}

// Present returns the indexes of the properties this layout encodes.
func (l *PropertyLayout) Present() []int {
	out := make([]int, len(l.present))
	copy(out, l.present)
	return out
}

// Size returns the encoded size of p's flag words and values.
func (l *PropertyLayout) Size(p *Properties) (int, error) {
	size := 2 * flagWordCount(p.flags)
	if l.static {
		return size + l.staticSize, nil
	}
	size += l.staticSize
	for _, i := range l.present {
		f := l.Class.Properties[i]
		switch f.Type {
		case TypeShortStr:
			size += 1 + len(p.values[i].(string))
		case TypeLongStr:
			size += 4 + len(p.values[i].(string))
		case TypeTable:
			n, err := TableSize(p.values[i].(Table))
			if err != nil {
				return 0, fmt.Errorf("%s: %w", f.Name, err)
			}
			size += n
		}
	}
	return size, nil
}

// Encode appends p's flag words and values.
func (l *PropertyLayout) Encode(buf []byte, p *Properties) ([]byte, error) {
	buf = appendFlagWords(buf, p.flags)
	var err error
	for _, i := range l.present {
		f := l.Class.Properties[i]
		v := p.values[i]
		switch f.Type {
		case TypeOctet:
			buf = append(buf, v.(uint8))
		case TypeShort:
			buf = appendUint16(buf, v.(uint16))
		case TypeLong:
			buf = appendUint32(buf, v.(uint32))
		case TypeLongLong:
			buf = appendUint64(buf, v.(uint64))
		case TypeTimestamp:
			buf = appendTimestamp(buf, v.(time.Time))
		case TypeShortStr:
			buf, err = appendShortString(buf, f.Name, v.(string))
		case TypeLongStr:
			buf = appendLongString(buf, v.(string))
		case TypeTable:
			buf, err = EncodeTable(buf, v.(Table))
		}
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

func (l *PropertyLayout) decode(c *cursor, flags PropertyFlags) (*Properties, error) {
	p := NewProperties(l.Class)
	p.flags = flags & l.Class.allMask
	var err error
	for _, i := range l.present {
		f := l.Class.Properties[i]
		var v interface{}
		switch f.Type {
		case TypeOctet:
			v, err = c.octet(f.Name)
		case TypeShort:
			v, err = c.short(f.Name)
		case TypeLong:
			v, err = c.long(f.Name)
		case TypeLongLong:
			v, err = c.longlong(f.Name)
		case TypeTimestamp:
			v, err = c.timestamp(f.Name)
		case TypeShortStr:
			v, err = c.shortString(f.Name)
		case TypeLongStr:
			v, err = c.longString(f.Name)
		case TypeTable:
			v, err = readTable(c)
		}
		if err != nil {
			return nil, err
		}
		p.values[i] = v
	}
	return p, nil
}

type layoutKey struct {
	classID uint16
	flags   PropertyFlags
}

// PropertyRegistry caches one PropertyLayout per (class, zero flags) seen.
// It is safe for concurrent use.
type PropertyRegistry struct {
	mu      sync.RWMutex
	classes map[uint16]*ContentClass
	layouts map[layoutKey]*PropertyLayout
}

// NewPropertyRegistry returns a registry that knows the basic class plus any
// extra classes given.
func NewPropertyRegistry(classes ...*ContentClass) *PropertyRegistry {
	r := &PropertyRegistry{
		classes: make(map[uint16]*ContentClass),
		layouts: make(map[layoutKey]*PropertyLayout),
	}
	r.classes[BasicContentClass.ClassID] = BasicContentClass
	for _, c := range classes {
		r.classes[c.ClassID] = c
	}
	return r
}

// Class returns the registered content class for classID.
func (r *PropertyRegistry) Class(classID uint16) (*ContentClass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[classID]
	return c, ok
}

// Layout returns the cached layout for the given class and flags, compiling
// it on first use. Bit properties in flags are ignored.
func (r *PropertyRegistry) Layout(classID uint16, flags PropertyFlags) (*PropertyLayout, error) {
	r.mu.RLock()
	class, ok := r.classes[classID]
	if !ok {
		r.mu.RUnlock()
		return nil, amqperrors.NewDecodeError(amqperrors.CommandInvalid,
			fmt.Sprintf("no content class %d", classID), FrameHeader, classID, 0)
	}
	key := layoutKey{classID: classID, flags: class.ZeroFlags(flags)}
	l, ok := r.layouts[key]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok = r.layouts[key]; ok {
		return l, nil
	}
	l = compilePropertyLayout(class, key.flags)
	r.layouts[key] = l
	return l, nil
}

// Len returns the number of compiled layouts.
func (r *PropertyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layouts)
}

// Size returns the encoded size of p.
func (r *PropertyRegistry) Size(p *Properties) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	l, err := r.Layout(p.class.ClassID, p.flags)
	if err != nil {
		return 0, err
	}
	return l.Size(p)
}

// Encode appends the encoded property list.
func (r *PropertyRegistry) Encode(buf []byte, p *Properties) ([]byte, error) {
	if p.err != nil {
		return buf, p.err
	}
	l, err := r.Layout(p.class.ClassID, p.flags)
	if err != nil {
		return buf, err
	}
	return l.Encode(buf, p)
}

// Decode reads a property list of class classID starting at offset and
// returns it with the number of bytes consumed.
func (r *PropertyRegistry) Decode(classID uint16, buf []byte, offset int) (*Properties, int, error) {
	c := newCursor(buf, offset)
	flags, err := readFlagWords(c)
	if err != nil {
		return nil, 0, err
	}
	l, err := r.Layout(classID, flags)
	if err != nil {
		return nil, 0, err
	}
	p, err := l.decode(c, flags)
	if err != nil {
		return nil, 0, err
	}
	return p, c.off - offset, nil
}
