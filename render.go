// Package protogen renders compiled protobuf file descriptors back into
// .proto source text.
//
// Rendering inverts what the schema compiler does to the source where it can:
// map fields are rebuilt from their synthetic entry types, oneof members are
// regrouped into their blocks and leading comments are reattached from the
// file's source code info. Custom options, extensions and extension ranges
// are not rendered.
package protogen

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Render returns the .proto source for file. Comments are taken from info,
// which is usually file.GetSourceCodeInfo() and may be nil.
//
// If file violates the structure the compiler guarantees, Render returns a
// *MalformedError and no text.
func Render(file *descriptorpb.FileDescriptorProto, info *descriptorpb.SourceCodeInfo, opts Options) (text string, err error) {
	if file == nil {
		return "", &MalformedError{Kind: NodeFile, Reason: "nil file descriptor"}
	}
	opts = opts.withDefaults()
	g := &generator{
		emitter: emitter{unit: opts.Indent},
		opts:    opts,
		pos:     newPosition(),
	}
	if !opts.StripComments {
		g.comments = NewCommentTable(info)
	}
	switch {
	case file.GetSyntax() == "proto3":
		g.implicitOptional = true
	case file.GetSyntax() == "editions" && file.Edition != nil:
		g.implicitOptional = true
	}

	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(renderPanic)
			if !ok {
				panic(r)
			}
			text, err = "", p.err
		}
	}()
	g.file(file)
	return g.String(), nil
}

// MustRender is like Render but panics on error.
func MustRender(file *descriptorpb.FileDescriptorProto, info *descriptorpb.SourceCodeInfo, opts Options) string {
	text, err := Render(file, info, opts)
	if err != nil {
		panic(err)
	}
	return text
}

type generator struct {
	emitter
	opts     Options
	pos      *position
	comments *CommentTable

	// implicitOptional is set when an optional label is the default and
	// must not be spelled out (proto3, editions).
	implicitOptional bool
}

func (g *generator) fail(kind NodeKind, format string, args ...any) {
	panic(renderPanic{err: &MalformedError{
		Kind:   kind,
		Path:   g.pos.snapshot(),
		Reason: fmt.Sprintf(format, args...),
	}})
}

// comment writes the comments recorded at the current position. Major
// declarations are always preceded by exactly one empty line; other
// statements only when they carry a comment.
func (g *generator) comment(major bool) {
	c, ok := g.comments.Lookup(g.pos.path)
	detached := ok && g.opts.DetachedComments && len(c.Detached) > 0
	leading := ok && c.Leading != ""
	switch {
	case major:
		g.separator()
	case detached:
		g.gap()
	case leading:
		g.blank()
	}
	if detached {
		for _, d := range c.Detached {
			g.commentLines(d)
			g.write("\n")
		}
	}
	if leading {
		g.commentLines(c.Leading)
	}
}

func (g *generator) file(f *descriptorpb.FileDescriptorProto) {
	switch {
	case f.GetSyntax() == "editions" && f.Edition != nil:
		g.pos.push(fileEditionTag)
		g.comment(false)
		g.line(`edition = "`, strings.TrimPrefix(f.GetEdition().String(), "EDITION_"), `";`)
		g.pos.pop()
	case f.Syntax != nil:
		g.pos.push(fileSyntaxTag)
		g.comment(false)
		g.line(`syntax = "`, f.GetSyntax(), `";`)
		g.pos.pop()
	}

	if f.Package != nil {
		g.pos.push(filePackageTag)
		g.blank()
		g.comment(false)
		g.line("package ", f.GetPackage(), ";")
		g.pos.pop()
	}

	for i, dep := range f.GetDependency() {
		g.pos.enter(fileDependencyTag, i)
		if i == 0 {
			g.blank()
		}
		g.comment(false)
		modifier := ""
		switch {
		case slices.Contains(f.GetPublicDependency(), int32(i)):
			modifier = "public "
		case slices.Contains(f.GetWeakDependency(), int32(i)):
			modifier = "weak "
		}
		g.line("import ", modifier, strconv.Quote(dep), ";")
		g.pos.leave()
	}

	for i, m := range f.GetMessageType() {
		g.pos.enter(fileMessagesTag, i)
		g.message(m)
		g.pos.leave()
	}
	for i, e := range f.GetEnumType() {
		g.pos.enter(fileEnumsTag, i)
		g.enum(e)
		g.pos.leave()
	}
	for i, s := range f.GetService() {
		g.pos.enter(fileServicesTag, i)
		g.service(s)
		g.pos.leave()
	}
}

func (g *generator) message(m *descriptorpb.DescriptorProto) {
	g.comment(true)
	g.writeIndent()
	g.write("message")
	if m.Name != nil {
		g.write(" ", m.GetName())
	}
	g.openBlock()

	entries := mapEntries(m)
	direct, groups, err := partitionFields(m)
	if err != nil {
		var oneofErr *oneofIndexError
		if errors.As(err, &oneofErr) {
			g.pos.enter(messageFieldsTag, oneofErr.field)
		}
		g.fail(NodeField, "%v", err)
	}

	for _, i := range direct {
		g.pos.enter(messageFieldsTag, i)
		g.field(m.GetField()[i], entries, false)
		g.pos.leave()
	}

	for _, group := range groups {
		g.pos.enter(messageOneofsTag, group.index)
		g.comment(false)
		g.writeIndent()
		g.write("oneof")
		if decl := m.GetOneofDecl()[group.index]; decl.Name != nil {
			g.write(" ", decl.GetName())
		}
		g.pos.leave()
		g.openBlock()
		for _, i := range group.fields {
			g.pos.enter(messageFieldsTag, i)
			g.field(m.GetField()[i], entries, true)
			g.pos.leave()
		}
		g.closeBlock()
	}

	for i, nested := range m.GetNestedType() {
		if isMapEntry(nested) {
			continue
		}
		g.pos.enter(messageNestedMessagesTag, i)
		g.message(nested)
		g.pos.leave()
	}
	for i, e := range m.GetEnumType() {
		g.pos.enter(messageEnumsTag, i)
		g.enum(e)
		g.pos.leave()
	}

	ranges := make([]reservedRange, len(m.GetReservedRange()))
	for i, r := range m.GetReservedRange() {
		ranges[i] = reservedRange{start: r.Start, end: r.End}
	}
	g.reserved(NodeMessage, messageReservedRangesTag, ranges, true)
	g.reservedNames(messageReservedNamesTag, m.GetReservedName())

	g.closeBlock()
}

func (g *generator) field(f *descriptorpb.FieldDescriptorProto, entries map[string]*descriptorpb.DescriptorProto, inOneof bool) {
	g.comment(false)
	g.writeIndent()

	typ, isMap, err := mapType(g.opts.MapKeyword, f, entries)
	if err != nil {
		g.fail(NodeField, "%v", err)
	}
	if !isMap {
		if !inOneof {
			g.label(f)
		}
		typ = fieldTypeName(f)
	}

	g.write(typ, " ", f.GetName(), " = ")
	if f.Number != nil {
		g.write(strconv.Itoa(int(f.GetNumber())))
	}
	if f.DefaultValue != nil {
		g.write(" [default = ", formatDefault(f), "]")
	}
	g.write(";\n")
}

func (g *generator) label(f *descriptorpb.FieldDescriptorProto) {
	if f.GetProto3Optional() {
		g.write("optional ")
		return
	}
	switch labelOf(f.Label) {
	case labelOptional:
		if !g.implicitOptional {
			g.write("optional ")
		}
	case labelRequired:
		g.write("required ")
	case labelRepeated:
		g.write("repeated ")
	}
}

// formatDefault renders a proto2 default value as a literal of the field's
// type. Bytes defaults are stored already escaped.
func formatDefault(f *descriptorpb.FieldDescriptorProto) string {
	v := f.GetDefaultValue()
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return quoteString(v)
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return `"` + v + `"`
	default:
		return v
	}
}

// quoteString quotes s as a .proto string literal. Printable bytes and UTF-8
// pass through; control bytes use octal escapes.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (g *generator) enum(e *descriptorpb.EnumDescriptorProto) {
	g.comment(true)
	g.writeIndent()
	g.write("enum")
	if e.Name != nil {
		g.write(" ", e.GetName())
	}
	g.openBlock()

	for i, v := range e.GetValue() {
		g.pos.enter(enumValuesTag, i)
		g.comment(false)
		g.writeIndent()
		g.write(v.GetName(), " = ")
		if v.Number != nil {
			g.write(strconv.Itoa(int(v.GetNumber())))
		}
		g.write(";\n")
		g.pos.leave()
	}

	ranges := make([]reservedRange, len(e.GetReservedRange()))
	for i, r := range e.GetReservedRange() {
		ranges[i] = reservedRange{start: r.Start, end: r.End}
	}
	g.reserved(NodeEnum, enumReservedRangesTag, ranges, false)
	g.reservedNames(enumReservedNamesTag, e.GetReservedName())

	g.closeBlock()
}

type reservedRange struct {
	start, end *int32
}

// reserved writes one statement for all ranges. Message ranges store an
// exclusive end, enum ranges an inclusive one. A range that holds no number
// is malformed.
func (g *generator) reserved(kind NodeKind, tag int32, ranges []reservedRange, exclusive bool) {
	if len(ranges) == 0 {
		return
	}
	for i, r := range ranges {
		if r.start == nil || r.end == nil {
			continue
		}
		if exclusive && *r.end <= *r.start || !exclusive && *r.end < *r.start {
			g.pos.enter(tag, i)
			g.fail(kind, "reserved range %d to %d is empty", *r.start, *r.end)
		}
	}
	g.pos.push(tag)
	g.comment(false)
	g.pos.pop()

	g.writeIndent()
	g.write("reserved ")
	for i, r := range ranges {
		if i > 0 {
			g.write(", ")
		}
		if r.start != nil {
			g.write(strconv.Itoa(int(*r.start)))
		}
		g.write(" to ")
		switch {
		case r.end == nil:
			g.write("max")
		case exclusive && *r.end >= messageRangeMax:
			g.write("max")
		case exclusive:
			g.write(strconv.Itoa(int(*r.end - 1)))
		case *r.end >= enumRangeMax:
			g.write("max")
		default:
			g.write(strconv.Itoa(int(*r.end)))
		}
	}
	g.write(";\n")
}

func (g *generator) reservedNames(tag int32, names []string) {
	if len(names) == 0 {
		return
	}
	g.pos.push(tag)
	g.comment(false)
	g.pos.pop()

	g.writeIndent()
	g.write("reserved ")
	for i, name := range names {
		if i > 0 {
			g.write(", ")
		}
		g.write(`"`, name, `"`)
	}
	g.write(";\n")
}

func (g *generator) service(s *descriptorpb.ServiceDescriptorProto) {
	g.comment(true)
	g.writeIndent()
	g.write("service")
	if s.Name != nil {
		g.write(" ", s.GetName())
	}
	g.openBlock()

	for i, m := range s.GetMethod() {
		g.pos.enter(serviceMethodsTag, i)
		g.method(m)
		g.pos.leave()
	}

	g.closeBlock()
}

func (g *generator) method(m *descriptorpb.MethodDescriptorProto) {
	if m.InputType == nil || m.OutputType == nil {
		g.fail(NodeMethod, "method %q needs both an input and an output type", m.GetName())
	}
	g.comment(false)
	g.writeIndent()
	if m.Name != nil {
		g.write("rpc ", m.GetName())
	}
	g.write("(")
	if m.GetClientStreaming() {
		g.write("stream ")
	}
	g.write(m.GetInputType(), ") returns (")
	if m.GetServerStreaming() {
		g.write("stream ")
	}
	g.write(m.GetOutputType(), ");\n")
}
