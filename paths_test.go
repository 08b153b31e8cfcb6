package protogen

import (
	"slices"
	"testing"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestPathTags_MatchDescriptorProto(t *testing.T) {
	fields := func(m interface {
		ProtoReflect() protoreflect.Message
	}) protoreflect.FieldDescriptors {
		return m.ProtoReflect().Descriptor().Fields()
	}
	file := fields(&descriptorpb.FileDescriptorProto{})
	message := fields(&descriptorpb.DescriptorProto{})
	enum := fields(&descriptorpb.EnumDescriptorProto{})
	service := fields(&descriptorpb.ServiceDescriptorProto{})

	tests := []struct {
		fields protoreflect.FieldDescriptors
		name   protoreflect.Name
		tag    int32
	}{
		{file, "syntax", fileSyntaxTag},
		{file, "package", filePackageTag},
		{file, "dependency", fileDependencyTag},
		{file, "message_type", fileMessagesTag},
		{file, "enum_type", fileEnumsTag},
		{file, "service", fileServicesTag},
		{file, "edition", fileEditionTag},
		{message, "field", messageFieldsTag},
		{message, "nested_type", messageNestedMessagesTag},
		{message, "enum_type", messageEnumsTag},
		{message, "oneof_decl", messageOneofsTag},
		{message, "reserved_range", messageReservedRangesTag},
		{message, "reserved_name", messageReservedNamesTag},
		{enum, "value", enumValuesTag},
		{enum, "reserved_range", enumReservedRangesTag},
		{enum, "reserved_name", enumReservedNamesTag},
		{service, "method", serviceMethodsTag},
	}
	for _, tt := range tests {
		fd := tt.fields.ByName(tt.name)
		if fd == nil {
			t.Errorf("no field %s", tt.name)
			continue
		}
		if int32(fd.Number()) != tt.tag {
			t.Errorf("%s: constant is %d, descriptor.proto says %d", fd.FullName(), tt.tag, fd.Number())
		}
	}
}

func TestPosition_EnterLeave(t *testing.T) {
	p := newPosition()
	p.enter(fileMessagesTag, 2)
	p.enter(messageFieldsTag, 0)
	if want := []int32{4, 2, 2, 0}; !slices.Equal(p.path, want) {
		t.Errorf("want %v, got %v", want, p.path)
	}

	snap := p.snapshot()
	p.leave()
	p.push(messageReservedNamesTag)
	if want := []int32{4, 2, 10}; !slices.Equal(p.path, want) {
		t.Errorf("want %v, got %v", want, p.path)
	}
	if want := []int32{4, 2, 2, 0}; !slices.Equal(snap, want) {
		t.Errorf("snapshot changed with position: %v", snap)
	}

	p.pop()
	p.leave()
	if len(p.path) != 0 {
		t.Errorf("want empty path, got %v", p.path)
	}
}

// Comments found by the compiler at nested positions come back at the
// statement they were written on.
func TestPositions_CompiledSource(t *testing.T) {
	src := `syntax = "proto3";

package test;

message Outer {
  message Middle {
    // deep field
    int32 a = 1;

    // deep oneof
    oneof pick {
      // deep member
      string b = 2;
    }

    // deep enum
    enum Kind {
      KIND_UNSPECIFIED = 0;
      // deep value
      KIND_X = 1;
    }
  }
  // sibling field
  Middle m = 1;
}

service S {
  rpc A(Outer) returns (Outer);
  // second method
  rpc B(Outer) returns (Outer);
}
`
	_, fd := compileSource(t, "positions.proto", src)
	table := NewCommentTable(fd.GetSourceCodeInfo())

	tests := []struct {
		path []int32
		want string
	}{
		{[]int32{4, 0, 3, 0, 2, 0}, " deep field\n"},
		{[]int32{4, 0, 3, 0, 8, 0}, " deep oneof\n"},
		{[]int32{4, 0, 3, 0, 2, 1}, " deep member\n"},
		{[]int32{4, 0, 3, 0, 4, 0}, " deep enum\n"},
		{[]int32{4, 0, 3, 0, 4, 0, 2, 1}, " deep value\n"},
		{[]int32{4, 0, 2, 0}, " sibling field\n"},
		{[]int32{6, 0, 2, 1}, " second method\n"},
	}
	for _, tt := range tests {
		c, ok := table.Lookup(tt.path)
		if !ok || c.Leading != tt.want {
			t.Errorf("path %v: want %q, got %q (found=%v)", tt.path, tt.want, c.Leading, ok)
		}
	}

	want := `syntax = "proto3";

package test;

message Outer {
  // sibling field
  .test.Outer.Middle m = 1;

  message Middle {
    // deep field
    int32 a = 1;

    // deep oneof
    oneof pick {
      // deep member
      string b = 2;
    }

    // deep enum
    enum Kind {
      KIND_UNSPECIFIED = 0;

      // deep value
      KIND_X = 1;
    }
  }
}

service S {
  rpc A(.test.Outer) returns (.test.Outer);

  // second method
  rpc B(.test.Outer) returns (.test.Outer);
}
`
	assertText(t, MustRender(fd, fd.GetSourceCodeInfo(), goldenOpts), want)
}
