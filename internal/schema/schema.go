// Package schema holds the wire message definitions for the service's
// protobuf API and a data-driven encoder/decoder built on top of them.
// Adding a message type is a table change, not a code change: the registry
// compiles its definition tables into protobuf descriptors and marshals
// through dynamic messages.
package schema

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/lunarhue/anylist/internal/errs"
)

// Rule is the presence/cardinality rule of a field.
type Rule int

const (
	Optional Rule = iota
	Required
	Repeated
	Map
)

// Kind is the scalar or composite type of a field.
type Kind int

const (
	String Kind = iota
	Bool
	Bytes
	Int32
	Int64
	Uint64
	Double
	Float
	Enum
	Message
)

// Field is one numbered field of a message definition.
type Field struct {
	Name   string
	Number int32
	Rule   Rule
	Kind   Kind
	// TypeName names the message or enum type within the same registry
	// when Kind is Message or Enum.
	TypeName string
	// ValueKind and ValueTypeName describe the value type of a Map field
	// (map keys are always strings on this API).
	ValueKind     Kind
	ValueTypeName string
}

// MessageDef is one entry of the registry table.
type MessageDef struct {
	Name   string
	Fields []Field
}

// EnumValue is a single named enum constant.
type EnumValue struct {
	Name   string
	Number int32
}

// EnumDef declares an enum type resolvable by name from message fields.
type EnumDef struct {
	Name   string
	Values []EnumValue
}

// Registry resolves message names to their descriptors and
// encodes/decodes wire payloads.
type Registry struct {
	pkg      string
	messages map[string]protoreflect.MessageDescriptor
}

// New compiles the given definitions into a registry. Message and enum
// references are resolved by name within the same registry; the wire
// semantics are proto2 so Required is enforced on both encode and decode.
func New(enums []EnumDef, messages []MessageDef) (*Registry, error) {
	const pkg = "pcov"

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("pcov/definitions.proto"),
		Package: proto.String(pkg),
		Syntax:  proto.String("proto2"),
	}

	for _, e := range enums {
		ed := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.Name)}
		for _, v := range e.Values {
			ed.Value = append(ed.Value, &descriptorpb.EnumValueDescriptorProto{
				Name:   proto.String(v.Name),
				Number: proto.Int32(v.Number),
			})
		}
		fd.EnumType = append(fd.EnumType, ed)
	}

	for _, m := range messages {
		md, err := buildMessage(pkg, m)
		if err != nil {
			return nil, err
		}
		fd.MessageType = append(fd.MessageType, md)
	}

	file, err := protodesc.NewFile(fd, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: compile definitions: %w", err)
	}

	r := &Registry{pkg: pkg, messages: make(map[string]protoreflect.MessageDescriptor, len(messages))}
	msgs := file.Messages()
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		r.messages[string(md.Name())] = md
	}
	return r, nil
}

func buildMessage(pkg string, m MessageDef) (*descriptorpb.DescriptorProto, error) {
	md := &descriptorpb.DescriptorProto{Name: proto.String(m.Name)}
	for _, f := range m.Fields {
		if f.Rule == Map {
			entry, err := mapEntry(pkg, m.Name, f)
			if err != nil {
				return nil, err
			}
			md.NestedType = append(md.NestedType, entry)
			md.Field = append(md.Field, &descriptorpb.FieldDescriptorProto{
				Name:     proto.String(f.Name),
				Number:   proto.Int32(f.Number),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
				Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
				TypeName: proto.String(fmt.Sprintf(".%s.%s.%s", pkg, m.Name, entry.GetName())),
			})
			continue
		}

		fdp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(f.Name),
			Number: proto.Int32(f.Number),
			Label:  label(f.Rule),
			Type:   wireType(f.Kind),
		}
		if f.Kind == Message || f.Kind == Enum {
			if f.TypeName == "" {
				return nil, fmt.Errorf("schema: %s.%s: missing type name", m.Name, f.Name)
			}
			fdp.TypeName = proto.String("." + pkg + "." + f.TypeName)
		}
		md.Field = append(md.Field, fdp)
	}
	return md, nil
}

func mapEntry(pkg, msgName string, f Field) (*descriptorpb.DescriptorProto, error) {
	value := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String("value"),
		Number: proto.Int32(2),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   wireType(f.ValueKind),
	}
	if f.ValueKind == Message || f.ValueKind == Enum {
		if f.ValueTypeName == "" {
			return nil, fmt.Errorf("schema: %s.%s: missing map value type name", msgName, f.Name)
		}
		value.TypeName = proto.String("." + pkg + "." + f.ValueTypeName)
	}
	return &descriptorpb.DescriptorProto{
		Name: proto.String(entryName(f.Name)),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:   proto.String("key"),
				Number: proto.Int32(1),
				Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
			},
			value,
		},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}, nil
}

// entryName converts a field name to the CamelCase map-entry message name
// the descriptor format expects.
func entryName(field string) string {
	var b strings.Builder
	up := true
	for _, c := range field {
		if c == '_' {
			up = true
			continue
		}
		if up {
			b.WriteString(strings.ToUpper(string(c)))
			up = false
		} else {
			b.WriteRune(c)
		}
	}
	b.WriteString("Entry")
	return b.String()
}

func label(r Rule) *descriptorpb.FieldDescriptorProto_Label {
	switch r {
	case Required:
		return descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	case Repeated:
		return descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	default:
		return descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	}
}

func wireType(k Kind) *descriptorpb.FieldDescriptorProto_Type {
	switch k {
	case Bool:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
	case Bytes:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES.Enum()
	case Int32:
		return descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum()
	case Int64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum()
	case Uint64:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT64.Enum()
	case Double:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum()
	case Float:
		return descriptorpb.FieldDescriptorProto_TYPE_FLOAT.Enum()
	case Enum:
		return descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
	case Message:
		return descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
	default:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	}
}

// Encode builds the named message from a field map and marshals it.
// Missing required fields fail the marshal.
func (r *Registry) Encode(name string, fields map[string]any) ([]byte, error) {
	md, ok := r.messages[name]
	if !ok {
		return nil, fmt.Errorf("schema: unknown message %q", name)
	}
	msg := dynamicpb.NewMessage(md)
	if err := populate(msg, fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return data, nil
}

// Decode unmarshals data as the named message and converts it to a field
// map. Any failure, including a missing required field, is reported as a
// single *errs.DecodeError.
func (r *Registry) Decode(name string, data []byte) (map[string]any, error) {
	md, ok := r.messages[name]
	if !ok {
		return nil, &errs.DecodeError{Message: name, Err: fmt.Errorf("unknown message")}
	}
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, &errs.DecodeError{Message: name, Err: err}
	}
	return messageToMap(msg), nil
}

func populate(msg *dynamicpb.Message, fields map[string]any) error {
	desc := msg.Descriptor()
	for name, v := range fields {
		if v == nil {
			continue
		}
		fd := desc.Fields().ByName(protoreflect.Name(name))
		if fd == nil {
			return fmt.Errorf("unknown field %q", name)
		}
		if err := setField(msg, fd, v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func setField(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, v any) error {
	switch {
	case fd.IsMap():
		return setMap(msg, fd, v)
	case fd.IsList():
		return setList(msg, fd, v)
	default:
		val, err := singular(fd, v)
		if err != nil {
			return err
		}
		msg.Set(fd, val)
		return nil
	}
}

func setList(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, v any) error {
	var elems []any
	switch vv := v.(type) {
	case []any:
		elems = vv
	case []string:
		for _, s := range vv {
			elems = append(elems, s)
		}
	case []map[string]any:
		for _, m := range vv {
			elems = append(elems, m)
		}
	default:
		return fmt.Errorf("unsupported repeated value %T", v)
	}
	list := msg.Mutable(fd).List()
	for _, e := range elems {
		val, err := singular(fd, e)
		if err != nil {
			return err
		}
		list.Append(val)
	}
	return nil
}

func setMap(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, v any) error {
	entries := map[string]any{}
	switch vv := v.(type) {
	case map[string]any:
		entries = vv
	case map[string]string:
		for k, s := range vv {
			entries[k] = s
		}
	default:
		return fmt.Errorf("unsupported map value %T", v)
	}
	mp := msg.Mutable(fd).Map()
	valueDesc := fd.MapValue()
	for k, e := range entries {
		val, err := singular(valueDesc, e)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		mp.Set(protoreflect.ValueOfString(k).MapKey(), val)
	}
	return nil
}

func singular(fd protoreflect.FieldDescriptor, v any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		s, ok := v.(string)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("want string, got %T", v)
		}
		return protoreflect.ValueOfString(s), nil
	case protoreflect.BoolKind:
		b, ok := v.(bool)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("want bool, got %T", v)
		}
		return protoreflect.ValueOfBool(b), nil
	case protoreflect.BytesKind:
		b, ok := v.([]byte)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("want bytes, got %T", v)
		}
		return protoreflect.ValueOfBytes(b), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := toInt64(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt32(int32(n)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := toInt64(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt64(n), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := toInt64(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint64(uint64(n)), nil
	case protoreflect.FloatKind:
		f, err := toFloat64(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfFloat32(float32(f)), nil
	case protoreflect.DoubleKind:
		f, err := toFloat64(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfFloat64(f), nil
	case protoreflect.EnumKind:
		switch ev := v.(type) {
		case string:
			vd := fd.Enum().Values().ByName(protoreflect.Name(ev))
			if vd == nil {
				return protoreflect.Value{}, fmt.Errorf("unknown enum value %q", ev)
			}
			return protoreflect.ValueOfEnum(vd.Number()), nil
		default:
			n, err := toInt64(v)
			if err != nil {
				return protoreflect.Value{}, err
			}
			return protoreflect.ValueOfEnum(protoreflect.EnumNumber(n)), nil
		}
	case protoreflect.MessageKind:
		m, ok := v.(map[string]any)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("want message fields, got %T", v)
		}
		nested := dynamicpb.NewMessage(fd.Message())
		if err := populate(nested, m); err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfMessage(nested), nil
	default:
		return protoreflect.Value{}, fmt.Errorf("unsupported kind %v", fd.Kind())
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}

func messageToMap(msg protoreflect.Message) map[string]any {
	out := make(map[string]any)
	msg.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		out[string(fd.Name())] = fieldValue(fd, v)
		return true
	})
	return out
}

func fieldValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsMap():
		out := make(map[string]any)
		valueDesc := fd.MapValue()
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = singularValue(valueDesc, mv)
			return true
		})
		return out
	case fd.IsList():
		list := v.List()
		out := make([]any, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			out = append(out, singularValue(fd, list.Get(i)))
		}
		return out
	default:
		return singularValue(fd, v)
	}
}

func singularValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.BytesKind:
		return v.Bytes()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed32Kind, protoreflect.Fixed64Kind:
		return int64(v.Uint())
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.EnumKind:
		return int64(v.Enum())
	case protoreflect.MessageKind:
		return messageToMap(v.Message())
	default:
		return v.Interface()
	}
}
