package protogen

import (
	"strings"
)

// emitter accumulates rendered text and tracks the current indentation.
type emitter struct {
	out    strings.Builder
	unit   string
	indent string
}

func (e *emitter) write(parts ...string) {
	for _, p := range parts {
		e.out.WriteString(p)
	}
}

func (e *emitter) writeIndent() {
	e.out.WriteString(e.indent)
}

// line writes one indented line.
func (e *emitter) line(parts ...string) {
	e.writeIndent()
	e.write(parts...)
	e.out.WriteByte('\n')
}

// openBlock ends a declaration line with a brace and indents the body.
func (e *emitter) openBlock() {
	e.out.WriteString(" {\n")
	e.indent += e.unit
}

func (e *emitter) closeBlock() {
	e.indent = e.indent[:len(e.indent)-len(e.unit)]
	e.line("}")
}

// blank writes an empty line unless the output is empty, already ends with
// one, or has just opened a block.
func (e *emitter) blank() {
	s := e.out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") || strings.HasSuffix(s, "{\n") {
		return
	}
	e.out.WriteByte('\n')
}

// separator ensures the output ends in an empty line. It writes one even at
// the start of the output or after an opening brace.
func (e *emitter) separator() {
	s := e.out.String()
	if s == "\n" || strings.HasSuffix(s, "\n\n") {
		return
	}
	e.out.WriteByte('\n')
}

// gap is blank, but also separates from an opening brace. A comment on the
// line after a brace and followed by an empty line would otherwise be read
// back as the block's trailing comment.
func (e *emitter) gap() {
	s := e.out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	e.out.WriteByte('\n')
}

// commentLines writes text as // comment lines. The trailing newline the
// compiler keeps on every comment does not produce a line of its own, and
// CRLF line endings are reduced to LF.
func (e *emitter) commentLines(text string) {
	text = strings.TrimSuffix(text, "\n")
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSuffix(l, "\r")
		e.writeIndent()
		switch {
		case l == "":
			e.out.WriteString("//")
		case l[0] == ' ':
			e.out.WriteString("//")
			e.out.WriteString(l)
		default:
			e.out.WriteString("// ")
			e.out.WriteString(l)
		}
		e.out.WriteByte('\n')
	}
}

func (e *emitter) String() string {
	return e.out.String()
}
