package protogen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/coingaming/protobuf-gen/compiler"
)

// Config file names FindConfigFile looks for, in order of preference.
const (
	ConfigFileName     = ".protogen.toml"
	ConfigFileNameYAML = ".protogen.yaml"
)

// Config represents the .protogen.toml (or .protogen.yaml) configuration file.
type Config struct {
	Render  ConfigRender  `toml:"render" yaml:"render"`
	Compile ConfigCompile `toml:"compile" yaml:"compile"`
	Select  ConfigSelect  `toml:"select" yaml:"select"`
}

// ConfigRender holds rendering-related config.
type ConfigRender struct {
	Indent           string `toml:"indent" yaml:"indent"`
	MapKeyword       string `toml:"map_keyword" yaml:"map_keyword"`
	StripComments    *bool  `toml:"strip_comments" yaml:"strip_comments"`
	DetachedComments *bool  `toml:"detached_comments" yaml:"detached_comments"`
	Parallelism      int    `toml:"parallelism" yaml:"parallelism"`
}

// ConfigCompile selects and configures the schema compiler.
type ConfigCompile struct {
	Compiler   string   `toml:"compiler" yaml:"compiler"` // "native" (default) or "protoc"
	Protoc     string   `toml:"protoc" yaml:"protoc"`
	ProtoPaths []string `toml:"proto_paths" yaml:"proto_paths"`
	Recursive  *bool    `toml:"recursive" yaml:"recursive"`
}

// ConfigSelect narrows which compiled files are rendered.
type ConfigSelect struct {
	Include []string `toml:"include" yaml:"include"`
}

// FindConfigFile walks up from dir (the working directory when empty) to find
// a config file, stopping at the repository root (directory containing .git).
func FindConfigFile(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}

	for {
		for _, name := range []string{ConfigFileName, ConfigFileNameYAML} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadConfig reads and parses a config file. Files ending in .yaml or .yml
// are YAML, anything else is TOML.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	default:
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("loading config %s: unknown key %q", path, undecoded[0].String())
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Compile.Compiler {
	case "", "native", "protoc":
	default:
		return fmt.Errorf("compile.compiler must be \"native\" or \"protoc\", got %q", c.Compile.Compiler)
	}
	if c.Render.Parallelism < 0 {
		return fmt.Errorf("render.parallelism must not be negative, got %d", c.Render.Parallelism)
	}
	return nil
}

// MergeConfig applies the values cfg sets to opts. Values absent from the
// file leave opts unchanged.
func MergeConfig(opts *Options, cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Render.Indent != "" {
		opts.Indent = cfg.Render.Indent
	}
	if cfg.Render.MapKeyword != "" {
		opts.MapKeyword = cfg.Render.MapKeyword
	}
	if cfg.Render.StripComments != nil {
		opts.StripComments = *cfg.Render.StripComments
	}
	if cfg.Render.DetachedComments != nil {
		opts.DetachedComments = *cfg.Render.DetachedComments
	}
	if cfg.Render.Parallelism > 0 {
		opts.Parallelism = cfg.Render.Parallelism
	}
	if cfg.Compile.Recursive != nil {
		opts.Recursive = *cfg.Compile.Recursive
	}
	if len(cfg.Select.Include) > 0 {
		opts.Include = cfg.Select.Include
	}
}

// NewCompiler builds the compiler the config selects. A nil config yields
// the in-process compiler with no import paths.
func (c *Config) NewCompiler() compiler.Compiler {
	if c == nil {
		return &compiler.Native{}
	}
	if c.Compile.Compiler == "protoc" {
		return &compiler.Protoc{Path: c.Compile.Protoc, ImportPaths: c.Compile.ProtoPaths}
	}
	return &compiler.Native{ImportPaths: c.Compile.ProtoPaths}
}
