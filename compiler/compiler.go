// Package compiler produces descriptor sets from .proto sources, either with
// the external protoc binary or in-process.
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Compiler compiles .proto files into a descriptor set. The set holds every
// requested file and its transitive imports, dependencies first, each with
// source code info.
type Compiler interface {
	Compile(ctx context.Context, files ...string) (*descriptorpb.FileDescriptorSet, error)
}

// Native compiles in-process with protocompile. Files are looked up in
// Overlay first, then among the already compiled Descriptors, then under
// ImportPaths. The well-known imports are always available.
type Native struct {
	ImportPaths []string
	Overlay     map[string]string
	Descriptors []*descriptorpb.FileDescriptorProto
}

var _ Compiler = (*Native)(nil)

func (n *Native) Compile(ctx context.Context, files ...string) (*descriptorpb.FileDescriptorSet, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if len(files) == 0 {
		return set, nil
	}

	c := protocompile.Compiler{
		Resolver:       protocompile.WithStandardImports(n.resolver()),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	linked, err := c.Compile(ctx, files...)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", strings.Join(files, ", "), err)
	}

	seen := make(map[string]bool)
	for _, f := range linked {
		appendFile(set, f, seen)
	}
	return set, nil
}

func (n *Native) resolver() protocompile.Resolver {
	var resolvers protocompile.CompositeResolver
	if len(n.Overlay) > 0 {
		resolvers = append(resolvers, &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(n.Overlay),
		})
	}
	if len(n.Descriptors) > 0 {
		byName := make(map[string]*descriptorpb.FileDescriptorProto, len(n.Descriptors))
		for _, fd := range n.Descriptors {
			byName[fd.GetName()] = fd
		}
		resolvers = append(resolvers, protocompile.ResolverFunc(func(path string) (protocompile.SearchResult, error) {
			if fd, ok := byName[path]; ok {
				return protocompile.SearchResult{Proto: fd}, nil
			}
			return protocompile.SearchResult{}, protoregistry.NotFound
		}))
	}
	resolvers = append(resolvers, &protocompile.SourceResolver{
		ImportPaths: n.ImportPaths,
		Accessor:    func(path string) (io.ReadCloser, error) { return os.Open(path) },
	})
	return resolvers
}

// appendFile adds fd to set after its imports, skipping files already added.
func appendFile(set *descriptorpb.FileDescriptorSet, fd protoreflect.FileDescriptor, seen map[string]bool) {
	if seen[fd.Path()] {
		return
	}
	seen[fd.Path()] = true
	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		appendFile(set, imports.Get(i).FileDescriptor, seen)
	}
	set.File = append(set.File, fileProto(fd))
}

// fileProto prefers the compiler's own descriptor proto, which carries the
// source code info exactly as generated.
func fileProto(fd protoreflect.FileDescriptor) *descriptorpb.FileDescriptorProto {
	if r, ok := fd.(interface {
		FileDescriptorProto() *descriptorpb.FileDescriptorProto
	}); ok {
		return r.FileDescriptorProto()
	}
	return protodesc.ToFileDescriptorProto(fd)
}
