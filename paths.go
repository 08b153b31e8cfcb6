package protogen

// Field numbers from descriptor.proto. Source code info locations are
// addressed by these, so they must match the compiler exactly.
const (
	fileSyntaxTag     int32 = 12 // FileDescriptorProto.syntax
	filePackageTag    int32 = 2  // FileDescriptorProto.package
	fileDependencyTag int32 = 3  // FileDescriptorProto.dependency
	fileMessagesTag   int32 = 4  // FileDescriptorProto.message_type
	fileEnumsTag      int32 = 5  // FileDescriptorProto.enum_type
	fileServicesTag   int32 = 6  // FileDescriptorProto.service
	fileEditionTag    int32 = 14 // FileDescriptorProto.edition

	messageFieldsTag         int32 = 2  // DescriptorProto.field
	messageNestedMessagesTag int32 = 3  // DescriptorProto.nested_type
	messageEnumsTag          int32 = 4  // DescriptorProto.enum_type
	messageOneofsTag         int32 = 8  // DescriptorProto.oneof_decl
	messageReservedRangesTag int32 = 9  // DescriptorProto.reserved_range
	messageReservedNamesTag  int32 = 10 // DescriptorProto.reserved_name

	enumValuesTag         int32 = 2 // EnumDescriptorProto.value
	enumReservedRangesTag int32 = 4 // EnumDescriptorProto.reserved_range
	enumReservedNamesTag  int32 = 5 // EnumDescriptorProto.reserved_name

	serviceMethodsTag int32 = 2 // ServiceDescriptorProto.method
)

// Upper bounds the compiler stores for "max" in reserved ranges.
const (
	messageRangeMax int32 = 536870912  // exclusive, one past the largest field number
	enumRangeMax    int32 = 2147483647 // inclusive
)

// position is the location path of the element currently being rendered.
type position struct {
	path []int32
}

func newPosition() *position {
	return &position{path: make([]int32, 0, 10)}
}

// push enters child collection tag, or element index within it.
func (p *position) push(n int32) {
	p.path = append(p.path, n)
}

func (p *position) pop() {
	p.path = p.path[:len(p.path)-1]
}

// enter pushes a collection tag and element index together.
func (p *position) enter(tag int32, index int) {
	p.path = append(p.path, tag, int32(index))
}

func (p *position) leave() {
	p.path = p.path[:len(p.path)-2]
}

// snapshot returns a copy of the current path.
func (p *position) snapshot() []int32 {
	c := make([]int32, len(p.path))
	copy(c, p.path)
	return c
}
