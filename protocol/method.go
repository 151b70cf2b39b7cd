package protocol

import (
	"fmt"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Method is the payload of a method frame. The set of implementations is closed:
// one struct per AMQP 0-9-1 method, all defined in this package.
type Method interface {
	Descriptor() *MethodDescriptor
	arguments() []interface{}
}

// MethodDescriptor is the static description of one (class-id, method-id) pair.
type MethodDescriptor struct {
	ClassID     uint16
	MethodID    uint16
	Name        string
	Fields      []Field
	Synchronous bool
	HasContent  bool
	// ResponseTo is the request this method answers, nil for requests.
	ResponseTo *MethodDescriptor
	// ReplyWith lists the acceptable replies of a synchronous request.
	ReplyWith []*MethodDescriptor

	layout      argumentLayout
	staticFrame []byte
	new         func() Method
}

// New returns a zero value of the method type.
func (d *MethodDescriptor) New() Method {
	return d.new()
}

// IsStaticSize reports whether the argument size is independent of the values.
func (d *MethodDescriptor) IsStaticSize() bool {
	return d.layout.static
}

// IsStatic reports whether the whole frame encoding is a constant.
func (d *MethodDescriptor) IsStatic() bool {
	return d.layout.constant
}

// IsReply reports whether m is one of the replies listed for d.
func (d *MethodDescriptor) IsReply(m *MethodDescriptor) bool {
	for _, r := range d.ReplyWith {
		if r == m {
			return true
		}
	}
	return false
}

func (d *MethodDescriptor) String() string {
	return fmt.Sprintf("%s(%d.%d)", d.Name, d.ClassID, d.MethodID)
}

type methodDefinition struct {
	classID     uint16
	methodID    uint16
	name        string
	synchronous bool
	content     bool
	replyWith   []string
	fields      []Field
	new         func() Method
}

type methodRegistry struct {
	all    []*MethodDescriptor
	byID   map[uint32]*MethodDescriptor
	byName map[string]*MethodDescriptor
}

var methodTable *methodRegistry

func init() {
	methodTable = buildMethodRegistry(methodDefinitions)
}

func methodKey(classID, methodID uint16) uint32 {
	return uint32(classID)<<16 | uint32(methodID)
}

// buildMethodRegistry creates every descriptor first and links the
// request/reply graph in a second pass, by name.
func buildMethodRegistry(defs []methodDefinition) *methodRegistry {
	r := &methodRegistry{
		all:    make([]*MethodDescriptor, len(defs)),
		byID:   make(map[uint32]*MethodDescriptor, len(defs)),
		byName: make(map[string]*MethodDescriptor, len(defs)),
	}
	for i, def := range defs {
		d := &MethodDescriptor{
			ClassID:     def.classID,
			MethodID:    def.methodID,
			Name:        def.name,
			Fields:      def.fields,
			Synchronous: def.synchronous,
			HasContent:  def.content,
			layout:      compileLayout(def.fields),
			new:         def.new,
		}
		if d.layout.constant {
			d.staticFrame = buildStaticFrame(d)
		}
		r.all[i] = d
		r.byID[methodKey(d.ClassID, d.MethodID)] = d
		r.byName[d.Name] = d
	}
	for i, def := range defs {
		d := r.all[i]
		for _, name := range def.replyWith {
			reply, ok := r.byName[name]
			if !ok {
				panic(fmt.Sprintf("protocol: %s replies with unknown method %s", def.name, name))
			}
			d.ReplyWith = append(d.ReplyWith, reply)
			reply.ResponseTo = d
		}
	}
	return r
}

// buildStaticFrame returns everything after the type and channel octets:
// size, class, method, arguments and the frame end.
func buildStaticFrame(d *MethodDescriptor) []byte {
	args, err := d.layout.encode(nil, nil)
	if err != nil {
		panic(fmt.Sprintf("protocol: static encoding of %s: %v", d.Name, err))
	}
	buf := make([]byte, 0, 4+4+len(args)+1)
	buf = appendUint32(buf, uint32(4+len(args)))
	buf = appendUint16(buf, d.ClassID)
	buf = appendUint16(buf, d.MethodID)
	buf = append(buf, args...)
	return append(buf, FrameEnd)
}

func (r *methodRegistry) get(classID, methodID uint16) *MethodDescriptor {
	return r.byID[methodKey(classID, methodID)]
}

// LookupMethod returns the descriptor for a class/method pair.
func LookupMethod(classID, methodID uint16) (*MethodDescriptor, bool) {
	d, ok := methodTable.byID[methodKey(classID, methodID)]
	return d, ok
}

// LookupMethodByName accepts names like "basic.publish".
func LookupMethodByName(name string) (*MethodDescriptor, bool) {
	d, ok := methodTable.byName[name]
	return d, ok
}

// Methods returns every known method descriptor in definition order.
func Methods() []*MethodDescriptor {
	out := make([]*MethodDescriptor, len(methodTable.all))
	copy(out, methodTable.all)
	return out
}

// ArgumentsSize returns the encoded length of the method arguments, excluding
// the class and method ids.
func ArgumentsSize(m Method) (int, error) {
	d := m.Descriptor()
	return d.layout.size(m.arguments())
}

// AppendArguments appends the encoded method arguments to buf.
func AppendArguments(buf []byte, m Method) ([]byte, error) {
	d := m.Descriptor()
	return d.layout.encode(buf, m.arguments())
}

// AppendMethodPayload appends class id, method id and arguments.
func AppendMethodPayload(buf []byte, m Method) ([]byte, error) {
	d := m.Descriptor()
	buf = appendUint16(buf, d.ClassID)
	buf = appendUint16(buf, d.MethodID)
	return d.layout.encode(buf, m.arguments())
}

// DecodeArguments fills m from buf, which must hold exactly the encoded arguments.
func DecodeArguments(buf []byte, m Method) error {
	d := m.Descriptor()
	c := newCursor(buf, 0)
	if err := d.layout.decode(c, m.arguments()); err != nil {
		return err
	}
	if c.remaining() != 0 {
		return amqperrors.NewDecodeError(amqperrors.SyntaxError,
			fmt.Sprintf("%d trailing bytes after %s", c.remaining(), d.Name), FrameMethod, d.ClassID, d.MethodID)
	}
	return nil
}

// ParseMethod decodes a method frame payload.
func ParseMethod(payload []byte) (Method, error) {
	c := newCursor(payload, 0)
	classID, err := c.short("class id")
	if err != nil {
		return nil, err
	}
	methodID, err := c.short("method id")
	if err != nil {
		return nil, err
	}
	d, ok := LookupMethod(classID, methodID)
	if !ok {
		return nil, amqperrors.NewUnknownMethod(classID, methodID)
	}
	m := d.new()
	if err := DecodeArguments(payload[4:], m); err != nil {
		return nil, err
	}
	return m, nil
}

// MethodName returns the dotted name of m, e.g. "queue.declare".
func MethodName(m Method) string {
	return m.Descriptor().Name
}

// IsMethod reports whether m is the class/method pair given.
func IsMethod(m Method, classID, methodID uint16) bool {
	d := m.Descriptor()
	return d.ClassID == classID && d.MethodID == methodID
}
