package protogen

import (
	"context"

	"github.com/coingaming/protobuf-gen/compiler"
)

// Generate compiles files with c and renders the resulting descriptors.
// Directories among files are expanded to the .proto files they hold (see
// compiler.Collect), named relative to c's import paths. All compiled files,
// transitive imports included, are rendered unless opts.Include narrows the
// selection.
func Generate(ctx context.Context, c compiler.Compiler, files []string, opts Options) ([]Result, error) {
	files, err := compiler.Collect(files, compiler.ImportPaths(c), opts.Recursive)
	if err != nil {
		return nil, err
	}
	set, err := c.Compile(ctx, files...)
	if err != nil {
		return nil, err
	}
	selected, err := Select(set, opts.Include...)
	if err != nil {
		return nil, err
	}
	return RenderSet(ctx, selected, opts)
}
