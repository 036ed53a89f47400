/*
zpegc is a console utility translating a PEG grammar description into a Go
source file containing a recursive-descent parser. Usage is

	zpegc [-o <file>] [-pkg <name>] [-unicode] [-v] <grammar-file | glob-pattern>

-o <file> defines output file name, default is Parser.go for a single input
file, or Parser_<base>.go per match in glob/batch mode;

-pkg <name> defines the Go package name of the generated file, default is main;

-unicode selects the Unicode character-property dialect instead of ASCII;

-v logs each pipeline stage's duration to stderr.

The ZPEGC_FLAGS environment variable, if set, is shell-tokenized and
prepended to the command line before flag parsing, letting a build carry
persistent flags (e.g. -unicode) without repeating them at every call site.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/shlex"
	"golang.org/x/sync/errgroup"

	"github.com/Anglebase/zpeg"
	"github.com/Anglebase/zpeg/bootstrap"
	"github.com/Anglebase/zpeg/checker"
	"github.com/Anglebase/zpeg/corpus"
	"github.com/Anglebase/zpeg/diag"
	"github.com/Anglebase/zpeg/emit"
	"github.com/Anglebase/zpeg/rules"
)

var (
	outFileName string
	packageName string
	unicode     bool
	verbose     bool
)

func main() {
	args := prependEnvFlags(os.Args[1:])
	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// prependEnvFlags shell-tokenizes ZPEGC_FLAGS (if set) and returns it
// followed by args, so environment-supplied flags never override an
// explicit command-line flag appearing later in the merged slice.
func prependEnvFlags(args []string) []string {
	env := os.Getenv("ZPEGC_FLAGS")
	if env == "" {
		return args
	}
	extra, err := shlex.Split(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zpegc: ignoring malformed ZPEGC_FLAGS: %s\n", err)
		return args
	}
	return append(extra, args...)
}

func run(args []string) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return zpeg.FormatError(zpeg.DriverErrors, "%s", err)
	}
	pattern := fs.Arg(0)
	if pattern == "" {
		fs.Usage()
		return zpeg.FormatError(zpeg.DriverErrors, "missing grammar-file argument")
	}

	inputs, err := resolveInputs(pattern)
	if err != nil {
		return err
	}

	batch := len(inputs) > 1
	if outFileName != "" && batch {
		return zpeg.FormatError(zpeg.DriverErrors, "-o cannot be combined with a multi-file glob pattern")
	}

	if batch {
		if err := checkReadable(inputs); err != nil {
			return err
		}
	}

	for _, in := range inputs {
		out := outFileName
		if out == "" {
			out = defaultOutputName(in, batch)
		}
		if err := compileFile(in, out); err != nil {
			return err
		}
	}
	return nil
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("zpegc", flag.ContinueOnError)
	fs.StringVar(&outFileName, "o", "", "output file name")
	fs.StringVar(&packageName, "pkg", "main", "Go package name of the generated file")
	fs.BoolVar(&unicode, "unicode", false, "use the Unicode character-property dialect")
	fs.BoolVar(&verbose, "v", false, "log pipeline stage durations to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: zpegc [-o <file>] [-pkg <name>] [-unicode] [-v] <grammar-file | glob-pattern>")
		fs.PrintDefaults()
	}
	return fs
}

// resolveInputs expands pattern via github.com/gobwas/glob when it contains
// glob metacharacters, otherwise treats it as a single literal path. Glob
// expansion is matched against the working directory's entries, mirroring
// shell globbing rather than a filesystem walk.
func resolveInputs(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, zpeg.FormatError(zpeg.DriverErrors, "invalid glob pattern %q: %s", pattern, err)
	}
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil, zpeg.FormatError(zpeg.DriverErrors, "reading working directory: %s", err)
	}
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && g.Match(e.Name()) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return nil, zpeg.FormatError(zpeg.DriverErrors, "glob pattern %q matched no files", pattern)
	}
	return matches, nil
}

// checkReadable concurrently stats every batch-mode input so one missing or
// un-stat-able file is reported before any of the (strictly single-threaded)
// parse/check/emit pipelines below start running. The pipeline itself never
// runs files concurrently; this pre-check is the only parallel step.
func checkReadable(inputs []string) error {
	var g errgroup.Group
	g.SetLimit(8)
	for _, in := range inputs {
		in := in
		g.Go(func() error {
			if _, err := os.Stat(in); err != nil {
				return zpeg.FormatError(zpeg.DriverErrors, "%s: %s", in, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func defaultOutputName(in string, batch bool) string {
	if !batch {
		return "Parser.go"
	}
	base := in
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return "Parser_" + base + ".go"
}

func compileFile(inFileName, outFileName string) error {
	stage := newStageLogger(inFileName)

	content, err := os.ReadFile(inFileName)
	if err != nil {
		return zpeg.FormatError(zpeg.DriverErrors, "reading %s: %s", inFileName, err)
	}
	stage.mark("read")

	src := corpus.New(inFileName, content)
	root, _, diags, err := bootstrap.Parse(src)
	if err != nil {
		return reportAndWrap(diags, src, inFileName, err)
	}
	stage.mark("bootstrap-parse")

	table := rules.Build(root, src)
	nulls, checkDiags := checker.Check(root, table, src)
	if len(checkDiags) > 0 {
		fmt.Fprintln(os.Stderr, diag.RenderAll(checkDiags, inFileName, src))
		return zpeg.FormatError(zpeg.CheckerErrors, "%s: grammar failed checks", inFileName)
	}
	stage.mark("check")

	out, err := emit.Emit(root, table, nulls, src, emit.Options{Package: packageName, Unicode: unicode})
	if err != nil {
		return zpeg.FormatError(zpeg.EmitErrors, "%s: %s", inFileName, err)
	}
	stage.mark("emit")

	if err := os.WriteFile(outFileName, []byte(out), 0o666); err != nil {
		return zpeg.FormatError(zpeg.DriverErrors, "writing %s: %s", outFileName, err)
	}
	stage.mark("write")

	return nil
}

// reportAndWrap prints diags (parse-phase diagnostics carry no fatal error
// on their own) and returns the fatal bootstrap error unchanged; that error
// already names the source and position.
func reportAndWrap(diags []diag.Diagnostic, src *corpus.Source, name string, err error) error {
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diag.RenderAll(diags, name, src))
	}
	return err
}

// stageLogger prints elapsed-time lines to stderr between pipeline stages
// when -v is set; it is a no-op otherwise.
type stageLogger struct {
	name string
	last time.Time
	on   bool
}

func newStageLogger(name string) *stageLogger {
	return &stageLogger{name: name, last: time.Now(), on: verbose}
}

func (s *stageLogger) mark(stage string) {
	if !s.on {
		return
	}
	now := time.Now()
	fmt.Fprintf(os.Stderr, "zpegc: %s: %s took %s\n", s.name, stage, now.Sub(s.last))
	s.last = now
}
