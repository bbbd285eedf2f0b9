// Package cli implements the esqlpp command line.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/manifest"
	"github.com/funvibe/esqlpp/internal/parser"
	"github.com/funvibe/esqlpp/internal/pipeline"
)

const usage = `Usage: esqlpp [options] [file.ec ...]

Translates embedded SQL in C source files. Without files, reads standard
input and writes standard output.

Options:
  -l, --suppress-line-directive  do not emit #line markers
  -o, --output-file FILE         write the output to FILE
  -h, --include-file FILE        include FILE instead of cubrid_esql.h
  -s, --dump-scope-info          dump the symbols of every closed scope
  -m, --dump-malloc-info         accepted and ignored
  -t, --enable-uci-trace         trace every runtime call to stderr
  -d, --disable-varchar-length   no length initializer for VARCHAR
  -2, --varchar2-style           name VARCHAR fields len and arr
  -u, --unsafe-null              ignore missing null indicators
  -e, --internal-indicator       pass an internal indicator by default
      --manifest FILE            record translated statements in FILE
      --config FILE              read options from FILE
      --verbose                  report progress
  -v, --version                  print the version
      --help                     print this help
`

// maxExitCode caps the error count used as exit status.
const maxExitCode = 255

// invocation is the parsed command line.
type invocation struct {
	inputs     []string
	configPath string
	verbose    bool
	version    bool
	help       bool
	overrides  []func(o *config.Options)
}

// valueFlags take an argument, either as the next word or after "=".
var valueFlags = map[string]func(v string) func(o *config.Options){
	"output-file":  func(v string) func(o *config.Options) { return func(o *config.Options) { o.OutputFile = v } },
	"include-file": func(v string) func(o *config.Options) { return func(o *config.Options) { o.IncludeFile = v } },
	"manifest":     func(v string) func(o *config.Options) { return func(o *config.Options) { o.Manifest = v } },
}

var boolFlags = map[string]func(o *config.Options){
	"suppress-line-directive": func(o *config.Options) { o.SuppressLineDirectives = true },
	"dump-scope-info":         func(o *config.Options) { o.DumpScopeInfo = true },
	"dump-malloc-info":        func(o *config.Options) {},
	"enable-uci-trace":        func(o *config.Options) { o.EnableUciTrace = true },
	"disable-varchar-length":  func(o *config.Options) { o.DisableVarcharLength = true },
	"varchar2-style":          func(o *config.Options) { o.Varchar2Style = true },
	"unsafe-null":             func(o *config.Options) { o.UnsafeNull = true },
	"internal-indicator":      func(o *config.Options) { o.InternalIndicator = true },
}

var shortFlags = map[byte]string{
	'l': "suppress-line-directive",
	'o': "output-file",
	'h': "include-file",
	's': "dump-scope-info",
	'm': "dump-malloc-info",
	't': "enable-uci-trace",
	'd': "disable-varchar-length",
	'2': "varchar2-style",
	'u': "unsafe-null",
	'e': "internal-indicator",
	'v': "version",
}

func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			inv.inputs = append(inv.inputs, arg)
			continue
		}
		if arg == "--" {
			inv.inputs = append(inv.inputs, args[i+1:]...)
			break
		}

		// next returns the argument of a value flag.
		next := func(name string) (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("option --%s needs an argument", name)
			}
			i++
			return args[i], nil
		}

		if strings.HasPrefix(arg, "--") {
			name, value, hasValue := strings.Cut(arg[2:], "=")
			switch name {
			case "config":
				if !hasValue {
					v, err := next(name)
					if err != nil {
						return nil, err
					}
					value = v
				}
				inv.configPath = value
			case "verbose":
				inv.verbose = true
			case "version":
				inv.version = true
			case "help":
				inv.help = true
			default:
				if set, ok := valueFlags[name]; ok {
					if !hasValue {
						v, err := next(name)
						if err != nil {
							return nil, err
						}
						value = v
					}
					inv.overrides = append(inv.overrides, set(value))
				} else if set, ok := boolFlags[name]; ok && !hasValue {
					inv.overrides = append(inv.overrides, set)
				} else {
					return nil, fmt.Errorf("unknown option %s", arg)
				}
			}
			continue
		}

		// Short flags may be grouped ("-ls"); a value flag ends the group.
		for j := 1; j < len(arg); j++ {
			name, ok := shortFlags[arg[j]]
			if !ok {
				return nil, fmt.Errorf("unknown option -%c", arg[j])
			}
			if name == "version" {
				inv.version = true
				continue
			}
			if set, ok := valueFlags[name]; ok {
				value := arg[j+1:]
				if value == "" {
					v, err := next(name)
					if err != nil {
						return nil, err
					}
					value = v
				}
				inv.overrides = append(inv.overrides, set(value))
				break
			}
			inv.overrides = append(inv.overrides, boolFlags[name])
		}
	}
	return inv, nil
}

// loadOptions reads the options file named on the command line, or the
// nearest esqlpp.yaml above dir, and applies the flags on top.
func loadOptions(inv *invocation, dir string) (*config.Options, error) {
	path := inv.configPath
	if path == "" {
		found, err := config.FindOptions(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	opts := config.Default()
	if path != "" {
		loaded, err := config.LoadOptions(path)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	for _, set := range inv.overrides {
		set(opts)
	}
	return opts, nil
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(&parser.ParserProcessor{}, &manifest.Processor{})
}

// Run executes esqlpp with args (without the program name) and returns the
// process exit status: the number of errors, capped at 255.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(io.Discard, "esqlpp: ", 0)

	inv, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n%s", err, usage)
		return 1
	}
	if inv.verbose {
		logger.SetOutput(stderr)
	}
	if inv.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if inv.version {
		fmt.Fprintln(stdout, config.Version)
		return 0
	}

	dir := "."
	if len(inv.inputs) > 0 && inv.inputs[0] != "-" {
		dir = filepath.Dir(inv.inputs[0])
	}
	opts, err := loadOptions(inv, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if opts.OutputFile != "" && len(inv.inputs) > 1 {
		fmt.Fprintf(stderr, "Error: --output-file needs a single input file\n")
		return 1
	}

	color := false
	if f, ok := stderr.(*os.File); ok {
		color = diagnostics.UseColor(f)
	}

	if len(inv.inputs) == 0 {
		inv.inputs = []string{"-"}
	}

	total := 0
	for _, input := range inv.inputs {
		n, err := translateFile(input, opts, stdin, stdout, stderr, color, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		total += n
	}
	return min(total, maxExitCode)
}

// translateFile runs one input through the pipeline and writes the result
// unless errors were reported. "-" stands for standard input, whose result
// goes to standard output unless an output file is set.
func translateFile(input string, opts *config.Options, stdin io.Reader, stdout, stderr io.Writer, color bool, logger *log.Logger) (int, error) {
	var (
		source []byte
		err    error
		ctx    *pipeline.PipelineContext
	)
	if input == "-" {
		source, err = io.ReadAll(stdin)
		if err != nil {
			return 0, fmt.Errorf("reading standard input: %w", err)
		}
		ctx = pipeline.NewPipelineContext(string(source))
		ctx.Options = opts
	} else {
		source, err = os.ReadFile(input)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", input, err)
		}
		ctx = pipeline.NewFileContext(input, string(source), opts)
	}

	logger.Printf("translating %s", displayName(input))
	ctx = newPipeline().Run(ctx)
	ctx.Reporter.Print(stderr, color)

	if n := len(ctx.Errors); n > 0 {
		logger.Printf("%s: %d error(s), no output written", displayName(input), n)
		return n, nil
	}

	if input == "-" && opts.OutputFile == "" {
		if _, err := stdout.Write(ctx.Output.Bytes()); err != nil {
			return 0, fmt.Errorf("writing standard output: %w", err)
		}
		return 0, nil
	}

	out := opts.OutputFile
	if out == "" {
		out = opts.OutputPath(input)
	}
	if out == input {
		return 0, fmt.Errorf("output file %s would overwrite the input", out)
	}
	if err := os.WriteFile(out, ctx.Output.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Printf("wrote %s (%d statements)", out, len(ctx.Records))
	return 0, nil
}

func displayName(input string) string {
	if input == "-" {
		return "<stdin>"
	}
	return input
}
