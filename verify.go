package protogen

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/coingaming/protobuf-gen/compiler"
)

// VerifyError reports that rendered text does not survive recompilation.
type VerifyError struct {
	File string
	What string // "descriptor" or "text"
	Diff string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: rendered %s differs after recompiling:\n%s", e.File, e.What, e.Diff)
}

// VerifyRoundTrip renders the file named name from set, recompiles the text
// in-process against the other files of set, and checks that the result
// describes the same schema and renders to identical text.
//
// Map fields are always rendered with the lowercase map keyword here, since
// that is the only spelling compilers accept.
func VerifyRoundTrip(ctx context.Context, set *descriptorpb.FileDescriptorSet, name string, opts Options) error {
	opts.MapKeyword = "map"

	var file *descriptorpb.FileDescriptorProto
	var deps []*descriptorpb.FileDescriptorProto
	for _, fd := range set.GetFile() {
		if fd.GetName() == name {
			file = fd
		} else {
			deps = append(deps, fd)
		}
	}
	if file == nil {
		return fmt.Errorf("file %q not in descriptor set", name)
	}

	text, err := Render(file, file.GetSourceCodeInfo(), opts)
	if err != nil {
		return err
	}

	c := &compiler.Native{
		Overlay:     map[string]string{name: text},
		Descriptors: deps,
	}
	recompiledSet, err := c.Compile(ctx, name)
	if err != nil {
		return fmt.Errorf("recompiling rendered %s: %w", name, err)
	}
	var recompiled *descriptorpb.FileDescriptorProto
	for _, fd := range recompiledSet.GetFile() {
		if fd.GetName() == name {
			recompiled = fd
		}
	}

	if diff := cmp.Diff(normalizeFile(file), normalizeFile(recompiled), protocmp.Transform()); diff != "" {
		return &VerifyError{File: name, What: "descriptor", Diff: diff}
	}

	again, err := Render(recompiled, recompiled.GetSourceCodeInfo(), opts)
	if err != nil {
		return fmt.Errorf("rendering recompiled %s: %w", name, err)
	}
	if again != text {
		return &VerifyError{File: name, What: "text", Diff: DiffStrings(text, again, name+" (rendered)", name+" (re-rendered)")}
	}
	return nil
}

// DiffStrings produces a unified diff between two strings with 3 lines of
// context.
func DiffStrings(a, b, nameA, nameB string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: nameA,
		ToFile:   nameB,
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// normalizeFile returns a copy of fd reduced to what rendering reproduces:
// no source code info, options, extensions or json names, proto2 syntax
// left implicit, and fields and nested declarations in a canonical order.
func normalizeFile(fd *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	fd = proto.Clone(fd).(*descriptorpb.FileDescriptorProto)
	fd.SourceCodeInfo = nil
	fd.Options = nil
	fd.Extension = nil
	if fd.GetSyntax() == "proto2" {
		fd.Syntax = nil
	}
	for _, mt := range fd.MessageType {
		normalizeMessage(mt)
	}
	for _, et := range fd.EnumType {
		et.Options = nil
		for _, v := range et.Value {
			v.Options = nil
		}
	}
	for _, svc := range fd.Service {
		svc.Options = nil
		for _, m := range svc.Method {
			m.Options = nil
		}
	}
	return fd
}

func normalizeMessage(md *descriptorpb.DescriptorProto) {
	md.Extension = nil
	md.ExtensionRange = nil
	if md.GetOptions().GetMapEntry() {
		md.Options = &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)}
	} else {
		md.Options = nil
	}
	for _, f := range md.Field {
		f.JsonName = nil
		f.Options = nil
	}
	for _, o := range md.OneofDecl {
		o.Options = nil
	}
	slices.SortStableFunc(md.Field, func(a, b *descriptorpb.FieldDescriptorProto) int {
		return int(a.GetNumber()) - int(b.GetNumber())
	})
	slices.SortStableFunc(md.NestedType, func(a, b *descriptorpb.DescriptorProto) int {
		return strings.Compare(a.GetName(), b.GetName())
	})
	for _, nt := range md.NestedType {
		normalizeMessage(nt)
	}
	for _, et := range md.EnumType {
		et.Options = nil
		for _, v := range et.Value {
			v.Options = nil
		}
	}
}
