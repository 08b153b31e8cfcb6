package protogen

import "runtime"

// NodeKind identifies the kind of descriptor element being rendered.
type NodeKind int

const (
	NodeFile NodeKind = iota
	NodeMessage
	NodeField
	NodeEnum
	NodeMethod
)

func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeMessage:
		return "message"
	case NodeField:
		return "field"
	case NodeEnum:
		return "enum"
	case NodeMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Options holds the configuration for rendering.
type Options struct {
	Indent           string   // per nesting level, two spaces when empty
	MapKeyword       string   // keyword for map fields, "Map" when empty
	StripComments    bool     // ignore source code info entirely
	DetachedComments bool     // also emit leading detached comments
	Parallelism      int      // concurrent renders in RenderSet, GOMAXPROCS when <= 0
	Include          []string // doublestar globs selecting files to render in Generate
	Recursive        bool     // Generate expands directories recursively
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "  "
	}
	if o.MapKeyword == "" {
		o.MapKeyword = "Map"
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}
