package protogen

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestCommentTable_Nil(t *testing.T) {
	table := NewCommentTable(nil)
	if table != nil {
		t.Fatal("expected nil table for absent source info")
	}
	if _, ok := table.Lookup([]int32{4, 0}); ok {
		t.Error("nil table must find nothing")
	}
	if table.Len() != 0 {
		t.Errorf("nil table Len: got %d", table.Len())
	}
}

func TestCommentTable_SkipsUncommentedLocations(t *testing.T) {
	info := &descriptorpb.SourceCodeInfo{Location: []*descriptorpb.SourceCodeInfo_Location{
		{Path: []int32{}},
		{Path: []int32{4, 0}},
		{Path: []int32{4, 0, 1}, TrailingComments: proto.String(" trailing only\n")},
		location([]int32{4, 1}, " leading\n"),
		location([]int32{4, 2}, "", " detached\n"),
	}}
	table := NewCommentTable(info)
	if table.Len() != 2 {
		t.Errorf("want 2 commented locations, got %d", table.Len())
	}
	if _, ok := table.Lookup([]int32{4, 0}); ok {
		t.Error("uncommented location should not be indexed")
	}
	c, ok := table.Lookup([]int32{4, 2})
	if !ok || c.Leading != "" || len(c.Detached) != 1 {
		t.Errorf("detached-only location: got %+v (found=%v)", c, ok)
	}
}

func TestCommentTable_FirstDuplicateWins(t *testing.T) {
	info := &descriptorpb.SourceCodeInfo{Location: []*descriptorpb.SourceCodeInfo_Location{
		location([]int32{4, 0, 9}, " first\n"),
		location([]int32{4, 0, 9}, " second\n"),
	}}
	c, ok := NewCommentTable(info).Lookup([]int32{4, 0, 9})
	if !ok || c.Leading != " first\n" {
		t.Errorf("want first comment, got %q", c.Leading)
	}
}

func TestCommentTable_ExactMatchOnly(t *testing.T) {
	info := &descriptorpb.SourceCodeInfo{Location: []*descriptorpb.SourceCodeInfo_Location{
		location([]int32{4, 0, 2, 1}, " field\n"),
		location([]int32{4, 10}, " message ten\n"),
	}}
	table := NewCommentTable(info)

	for _, path := range [][]int32{{4, 0}, {4, 0, 2}, {4, 0, 2, 1, 1}, {4, 1}, {4, 1, 0}} {
		if c, ok := table.Lookup(path); ok {
			t.Errorf("path %v should not match, got %q", path, c.Leading)
		}
	}
	if c, ok := table.Lookup([]int32{4, 10}); !ok || c.Leading != " message ten\n" {
		t.Errorf("path [4 10]: got %q (found=%v)", c.Leading, ok)
	}
}

func TestCommentTable_DoesNotAliasInput(t *testing.T) {
	path := []int32{4, 0}
	info := &descriptorpb.SourceCodeInfo{Location: []*descriptorpb.SourceCodeInfo_Location{location(path, " doc\n")}}
	table := NewCommentTable(info)
	path[1] = 7
	if _, ok := table.Lookup([]int32{4, 0}); !ok {
		t.Error("table should keep its own copy of the path")
	}
}

func TestCommentLines(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"leading space kept", " Doc line\n", "// Doc line\n"},
		{"space added", "Doc line", "// Doc line\n"},
		{"empty line", " a\n\n b\n", "// a\n//\n// b\n"},
		{"deeper indent kept", "   indented\n", "//   indented\n"},
		{"single empty", "\n", "//\n"},
		{"crlf line endings", " a\r\n b\r\n", "// a\n// b\n"},
		{"crlf empty line", " a\r\n\r\n b\r\n", "// a\n//\n// b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e emitter
			e.commentLines(tt.text)
			if got := e.String(); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEmitter_BlankRules(t *testing.T) {
	var e emitter
	e.unit = "  "
	e.blank()
	if e.String() != "" {
		t.Errorf("blank at start of output must write nothing, got %q", e.String())
	}

	e.write("message A")
	e.openBlock()
	e.blank()
	if e.String() != "message A {\n" {
		t.Errorf("blank after brace must write nothing, got %q", e.String())
	}
	e.gap()
	e.line("int32 a = 1;")
	e.blank()
	e.blank()
	e.closeBlock()

	want := "message A {\n\n  int32 a = 1;\n\n}\n"
	if e.String() != want {
		t.Errorf("want %q, got %q", want, e.String())
	}
}

func TestEmitter_Separator(t *testing.T) {
	var e emitter
	e.unit = "  "
	e.separator()
	if e.String() != "\n" {
		t.Errorf("separator at start of output must write one empty line, got %q", e.String())
	}
	e.separator()
	e.write("message A")
	e.openBlock()
	e.separator()
	e.separator()
	e.line("message B {}")
	e.closeBlock()

	want := "\nmessage A {\n\n  message B {}\n}\n"
	if e.String() != want {
		t.Errorf("want %q, got %q", want, e.String())
	}
}
