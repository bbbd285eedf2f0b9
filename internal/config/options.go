package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionsFileName is looked up from the input directory upwards.
const OptionsFileName = "esqlpp.yaml"

// Options controls which literal text the translator emits. None of them
// changes how host variables are bound.
type Options struct {
	// SuppressLineDirectives disables #line markers in the output.
	SuppressLineDirectives bool `yaml:"suppress_line_directives,omitempty"`

	// OutputFile overrides the derived <input>.c name. Only valid with a
	// single input file.
	OutputFile string `yaml:"output_file,omitempty"`

	// IncludeFile is the header with uci_ prototypes.
	IncludeFile string `yaml:"include_file,omitempty"`

	// DumpScopeInfo writes a comment with the symbols of every closed scope.
	DumpScopeInfo bool `yaml:"dump_scope_info,omitempty"`

	// EnableUciTrace emits an fprintf(stderr, ...) before each runtime call.
	EnableUciTrace bool `yaml:"enable_uci_trace,omitempty"`

	// DisableVarcharLength drops the length initializer of VARCHAR variables.
	DisableVarcharLength bool `yaml:"disable_varchar_length,omitempty"`

	// Varchar2Style names pseudo-type fields len/arr instead of length/array.
	Varchar2Style bool `yaml:"varchar2_style,omitempty"`

	// UnsafeNull ignores the "null indicator needed" runtime error.
	UnsafeNull bool `yaml:"unsafe_null,omitempty"`

	// InternalIndicator passes &uci_null_ind for variables without indicator.
	InternalIndicator bool `yaml:"internal_indicator,omitempty"`

	// Manifest is an optional SQLite database that records every translated
	// statement.
	Manifest string `yaml:"manifest,omitempty"`

	// LineTerminator ends every emitted runtime call. Defaults to "\n".
	LineTerminator string `yaml:"line_terminator,omitempty"`
}

// Default returns the options used when no file or flag sets anything.
func Default() *Options {
	o := &Options{}
	o.setDefaults()
	return o
}

// LoadOptions reads and parses an esqlpp.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses esqlpp.yaml content from bytes.
// The path argument is used only for error messages.
func ParseOptions(data []byte, path string) (*Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := o.validate(path); err != nil {
		return nil, err
	}
	o.setDefaults()
	return &o, nil
}

// FindOptions searches for esqlpp.yaml starting from dir and walking up to
// parent directories. Returns "" and nil error if there is none.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, OptionsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		candidate = filepath.Join(dir, "esqlpp.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) validate(path string) error {
	if o.IncludeFile != "" && strings.ContainsAny(o.IncludeFile, "\"\n") {
		return fmt.Errorf("%s: include_file %q contains a quote or newline", path, o.IncludeFile)
	}
	if o.OutputFile != "" && filepath.Ext(o.OutputFile) == SourceFileExt {
		return fmt.Errorf("%s: output_file %q would overwrite an input file", path, o.OutputFile)
	}
	switch o.LineTerminator {
	case "", "\n", " ", "\r\n":
	default:
		return fmt.Errorf("%s: line_terminator must be a newline, a space, or CRLF", path)
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.IncludeFile == "" {
		o.IncludeFile = DefaultIncludeFile
	}
	if o.LineTerminator == "" {
		o.LineTerminator = "\n"
	}
}

// LengthFieldName is the length member of synthesized pseudo-type structs.
func (o *Options) LengthFieldName() string {
	if o.Varchar2Style {
		return Varchar2LengthName
	}
	return VarcharLengthName
}

// ArrayFieldName is the byte-array member of synthesized pseudo-type structs.
func (o *Options) ArrayFieldName() string {
	if o.Varchar2Style {
		return Varchar2ArrayName
	}
	return VarcharArrayName
}

// UciOpt is the option word passed to every uci_start call.
func (o *Options) UciOpt() int {
	opt := 0
	if o.UnsafeNull {
		opt |= UciOptUnsafeNull
	}
	return opt
}

// OutputPath derives the generated file name for input.
func (o *Options) OutputPath(input string) string {
	if o.OutputFile != "" {
		return o.OutputFile
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + OutputFileExt
}
