package protogen

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

var scalarKeywords = map[descriptorpb.FieldDescriptorProto_Type]string{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   "double",
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    "float",
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    "int64",
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   "uint64",
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    "int32",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  "fixed64",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  "fixed32",
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     "bool",
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   "string",
	descriptorpb.FieldDescriptorProto_TYPE_GROUP:    "group",
	descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:  "message",
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    "bytes",
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   "uint32",
	descriptorpb.FieldDescriptorProto_TYPE_ENUM:     "enum",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: "sfixed32",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: "sfixed64",
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   "sint32",
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   "sint64",
}

// typeKeyword returns the keyword for a primitive type code. Absent and
// unrecognized codes report false.
func typeKeyword(t *descriptorpb.FieldDescriptorProto_Type) (string, bool) {
	if t == nil {
		return "", false
	}
	kw, ok := scalarKeywords[*t]
	return kw, ok
}

// fieldTypeName is the type as written in a field declaration: the stored
// type name verbatim, else the primitive keyword, else nothing.
func fieldTypeName(f *descriptorpb.FieldDescriptorProto) string {
	if f.TypeName != nil {
		return f.GetTypeName()
	}
	kw, _ := typeKeyword(f.Type)
	return kw
}

type label int

const (
	labelNone label = iota
	labelOptional
	labelRequired
	labelRepeated
	labelUnrecognized
)

func labelOf(l *descriptorpb.FieldDescriptorProto_Label) label {
	if l == nil {
		return labelNone
	}
	switch *l {
	case descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		return labelOptional
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return labelRequired
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return labelRepeated
	default:
		return labelUnrecognized
	}
}

// mapEntries collects the compiler-synthesized map entry types nested in m,
// keyed by simple name.
func mapEntries(m *descriptorpb.DescriptorProto) map[string]*descriptorpb.DescriptorProto {
	var entries map[string]*descriptorpb.DescriptorProto
	for _, nt := range m.GetNestedType() {
		if !isMapEntry(nt) {
			continue
		}
		if entries == nil {
			entries = make(map[string]*descriptorpb.DescriptorProto)
		}
		entries[nt.GetName()] = nt
	}
	return entries
}

func isMapEntry(m *descriptorpb.DescriptorProto) bool {
	return m.GetOptions().GetMapEntry()
}

// lastSegment returns the simple name at the end of a dotted type name.
func lastSegment(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}

// mapType decides how a field's type renders. If the field refers to one of
// entries it returns the map type built from the entry's key and value
// fields. An entry without exactly a key (1) and a value (2) is an error.
func mapType(keyword string, f *descriptorpb.FieldDescriptorProto, entries map[string]*descriptorpb.DescriptorProto) (string, bool, error) {
	if f.TypeName == nil || len(entries) == 0 {
		return "", false, nil
	}
	entry, ok := entries[lastSegment(f.GetTypeName())]
	if !ok {
		return "", false, nil
	}
	var key, value *descriptorpb.FieldDescriptorProto
	for _, ef := range entry.GetField() {
		switch ef.GetNumber() {
		case 1:
			key = ef
		case 2:
			value = ef
		}
	}
	if len(entry.GetField()) != 2 || key == nil || value == nil {
		return "", false, fmt.Errorf("map entry %q must have exactly a key (1) and a value (2) field", entry.GetName())
	}
	return keyword + "<" + fieldTypeName(key) + ", " + fieldTypeName(value) + ">", true, nil
}

// oneofGroup lists the fields of one oneof declaration, by index into the
// message's field list.
type oneofGroup struct {
	index  int
	fields []int
}

// oneofIndexError reports a field whose owning oneof is not declared.
type oneofIndexError struct {
	field    int
	name     string
	index    int
	declared int
}

func (e *oneofIndexError) Error() string {
	return fmt.Sprintf("field %q claims oneof index %d, message declares %d", e.name, e.index, e.declared)
}

// partitionFields splits m's fields into those rendered directly in the
// message body and those rendered inside oneof blocks, both in declaration
// order. Members of synthetic oneofs (proto3 optional) render directly and
// their oneof produces no group.
func partitionFields(m *descriptorpb.DescriptorProto) (direct []int, groups []oneofGroup, err error) {
	decls := m.GetOneofDecl()
	synthetic := syntheticOneofs(m)
	members := make([][]int, len(decls))
	for i, f := range m.GetField() {
		if f.OneofIndex == nil {
			direct = append(direct, i)
			continue
		}
		idx := int(f.GetOneofIndex())
		if idx < 0 || idx >= len(decls) {
			return nil, nil, &oneofIndexError{field: i, name: f.GetName(), index: idx, declared: len(decls)}
		}
		if synthetic[idx] {
			direct = append(direct, i)
			continue
		}
		members[idx] = append(members[idx], i)
	}
	for i := range decls {
		if synthetic[i] {
			continue
		}
		groups = append(groups, oneofGroup{index: i, fields: members[i]})
	}
	return direct, groups, nil
}

// syntheticOneofs reports which oneof declarations exist only to track
// presence of proto3 optional fields.
func syntheticOneofs(m *descriptorpb.DescriptorProto) []bool {
	decls := m.GetOneofDecl()
	synthetic := make([]bool, len(decls))
	seen := make([]bool, len(decls))
	for i := range synthetic {
		synthetic[i] = true
	}
	for _, f := range m.GetField() {
		if f.OneofIndex == nil {
			continue
		}
		idx := int(f.GetOneofIndex())
		if idx < 0 || idx >= len(decls) {
			continue
		}
		seen[idx] = true
		if !f.GetProto3Optional() {
			synthetic[idx] = false
		}
	}
	for i := range synthetic {
		synthetic[i] = synthetic[i] && seen[i]
	}
	return synthetic
}
