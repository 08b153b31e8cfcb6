package compiler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtocError is returned when protoc exits unsuccessfully. Output holds
// its diagnostics.
type ProtocError struct {
	Output string
	Err    error
}

func (e *ProtocError) Error() string {
	return fmt.Sprintf("protoc failed: %s: %v", strings.TrimSpace(e.Output), e.Err)
}

func (e *ProtocError) Unwrap() error {
	return e.Err
}

// Protoc runs the protoc binary. Canceling the context kills the process.
type Protoc struct {
	Path        string // protoc binary, looked up on PATH when empty
	ImportPaths []string
}

var _ Compiler = (*Protoc)(nil)

func (p *Protoc) Compile(ctx context.Context, files ...string) (*descriptorpb.FileDescriptorSet, error) {
	if len(files) == 0 {
		return &descriptorpb.FileDescriptorSet{}, nil
	}
	protocPath := p.Path
	if protocPath == "" {
		protocPath = "protoc"
	}
	if _, err := exec.LookPath(protocPath); err != nil {
		return nil, fmt.Errorf("protoc not found: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "protobuf-gen-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	out := filepath.Join(tmpDir, "descriptor-set.pb")
	args := []string{"--include_imports", "--include_source_info", "--descriptor_set_out=" + out}
	for _, ip := range p.ImportPaths {
		args = append(args, "--proto_path="+ip)
	}
	args = append(args, files...)

	if output, err := exec.CommandContext(ctx, protocPath, args...).CombinedOutput(); err != nil {
		return nil, &ProtocError{Output: string(output), Err: err}
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("reading protoc output: %w", err)
	}
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("decoding protoc output: %w", err)
	}
	return set, nil
}
