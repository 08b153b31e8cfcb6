package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImportPaths returns the directories c resolves file names against, or nil
// if c is not one of this package's compilers.
func ImportPaths(c Compiler) []string {
	switch c := c.(type) {
	case *Native:
		return c.ImportPaths
	case *Protoc:
		return c.ImportPaths
	default:
		return nil
	}
}

// Collect turns args into the file names a compiler with the given import
// paths expects. A directory contributes its .proto files, every one below it
// when recursive is set. Files found on disk under an import path are named
// relative to it, with forward slashes. Arguments that do not exist on disk
// are passed through unchanged for the compiler to resolve. A name produced
// more than once is returned once.
func Collect(args, importPaths []string, recursive bool) ([]string, error) {
	c := collector{roots: importPaths, seen: make(map[string]bool)}
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err != nil && !os.IsNotExist(err):
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		case err != nil || !info.IsDir():
			if !strings.HasSuffix(arg, ".proto") {
				return nil, fmt.Errorf("%s is not a .proto file", arg)
			}
			if err != nil {
				c.add(filepath.ToSlash(arg))
			} else {
				c.add(c.name(arg))
			}
		case recursive:
			err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && strings.HasSuffix(d.Name(), ".proto") {
					c.add(c.name(path))
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking directory %s: %w", arg, err)
			}
		default:
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", arg, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".proto") {
					c.add(c.name(filepath.Join(arg, entry.Name())))
				}
			}
		}
	}
	return c.files, nil
}

type collector struct {
	roots []string
	seen  map[string]bool
	files []string
}

func (c *collector) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.files = append(c.files, name)
	}
}

// name maps a path on disk to its name under the first import path that
// contains it. Paths outside every import path keep their cleaned form.
func (c *collector) name(path string) string {
	path = filepath.Clean(path)
	for _, root := range c.roots {
		rel, ok := relativeTo(root, path)
		if ok {
			return rel
		}
	}
	return filepath.ToSlash(path)
}

func relativeTo(root, path string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
