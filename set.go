package protogen

import (
	"context"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Result is the rendered text of one file.
type Result struct {
	Name string
	Text string
}

// DecodeDescriptorSet decodes a serialized FileDescriptorSet, as written by
// protoc --descriptor_set_out.
func DecodeDescriptorSet(data []byte) (*descriptorpb.FileDescriptorSet, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return set, nil
}

// ReadDescriptorSet reads and decodes a serialized FileDescriptorSet.
func ReadDescriptorSet(r io.Reader) (*descriptorpb.FileDescriptorSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set: %w", err)
	}
	return DecodeDescriptorSet(data)
}

// Select returns the files of set whose names match any of patterns, in set
// order. Patterns are doublestar globs ("acme/**/*.proto"). With no patterns
// every file is selected.
func Select(set *descriptorpb.FileDescriptorSet, patterns ...string) ([]*descriptorpb.FileDescriptorProto, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %q", p)
		}
	}
	if len(patterns) == 0 {
		return set.GetFile(), nil
	}

	var files []*descriptorpb.FileDescriptorProto
	for _, fd := range set.GetFile() {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, fd.GetName()); ok {
				files = append(files, fd)
				break
			}
		}
	}
	return files, nil
}

// RenderSet renders files concurrently, each with its own source code info.
// Results are in the order of files. The first failure cancels the
// remaining renders and is returned.
func RenderSet(ctx context.Context, files []*descriptorpb.FileDescriptorProto, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i, fd := range files {
		i, fd := i, fd
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := Render(fd, fd.GetSourceCodeInfo(), opts)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", fd.GetName(), err)
			}
			results[i] = Result{Name: fd.GetName(), Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
