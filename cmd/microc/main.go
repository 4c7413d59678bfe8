// microc - Micro compiler
//
// Compiles a Micro source file to pseudo-assembly in a single pass and
// writes the listing to stdout.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kolkov/microc"
)

const listingHeader = "Complete Code\n-------------\n"

// errReported means the failure was already written as diagnostics.
var errReported = errors.New("compilation failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "microc: error: %s\n", fatalMessage(err))
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configFile string
	flagSettings := defaultSettings()

	cmd := &cobra.Command{
		Use:   "microc [flags] <file>",
		Short: "Compile a Micro program to pseudo-assembly",
		Long: `microc compiles a Micro source file in a single pass. Syntax errors
are reported on stderr and parsing continues; the generated code is written
only when the file compiles cleanly.`,
		Version:       microc.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := defaultSettings()
			if configFile != "" {
				if err := loadSettings(configFile, &s); err != nil {
					return err
				}
			}
			mergeFlags(cmd, &s, flagSettings)
			if err := s.validate(); err != nil {
				return err
			}
			return compile(args[0], s, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "read settings from a TOML or YAML file")
	f.StringVarP(&flagSettings.Output, "output", "o", "", "write the listing to `file` instead of stdout")
	f.BoolVar(&flagSettings.NoHeader, "no-header", false, "omit the Complete Code header")
	f.BoolVar(&flagSettings.Trace, "trace", false, "log productions, actions and emitted code to stderr")
	f.StringVar(&flagSettings.AST, "ast", "", "also print the syntax tree as `format` (text or json)")
	f.BoolVar(&flagSettings.Verify, "verify", false, "check the generated listing before writing it")
	f.StringVar(&flagSettings.Color, "color", "auto", "colour diagnostics: auto, always or never")
	return cmd
}

// mergeFlags copies the flags set on the command line over s.
func mergeFlags(cmd *cobra.Command, s *Settings, flags Settings) {
	f := cmd.Flags()
	if f.Changed("output") {
		s.Output = flags.Output
	}
	if f.Changed("no-header") {
		s.NoHeader = flags.NoHeader
	}
	if f.Changed("trace") {
		s.Trace = flags.Trace
	}
	if f.Changed("ast") {
		s.AST = flags.AST
	}
	if f.Changed("verify") {
		s.Verify = flags.Verify
	}
	if f.Changed("color") {
		s.Color = flags.Color
	}
}

func compile(path string, s Settings, stdout, stderr io.Writer) error {
	cfg := &microc.Config{
		Diagnostics: stderr,
		Color:       useColor(s.Color, stderr),
	}
	if s.Trace {
		cfg.Trace = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	res, err := microc.CompileFile(path, cfg)
	if microc.IsFatal(err) {
		return err
	}

	if s.AST != "" {
		if terr := writeTree(stdout, res, s.AST); terr != nil {
			return terr
		}
	}
	if err != nil {
		return errReported
	}

	if s.Verify {
		if verr := res.Verify(); verr != nil {
			return fmt.Errorf("listing verification failed: %w", verr)
		}
	}
	return writeListing(s, res, stdout)
}

func writeTree(w io.Writer, res *microc.Result, format string) error {
	if format == "json" {
		data, err := res.TreeJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	return res.WriteTree(w)
}

func writeListing(s Settings, res *microc.Result, stdout io.Writer) (err error) {
	w := stdout
	if s.Output != "" {
		f, ferr := os.Create(s.Output)
		if ferr != nil {
			return fmt.Errorf("cannot create output: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if !s.NoHeader {
		if _, err := io.WriteString(w, listingHeader); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, res.Listing())
	return err
}

// useColor decides whether diagnostics written to w are coloured.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// fatalMessage formats err for the one-line fatal error report.
func fatalMessage(err error) string {
	var lexErr *microc.LexError
	if errors.As(err, &lexErr) {
		if lexErr.Filename != "" {
			return fmt.Sprintf("%s:%d:%d: %s", lexErr.Filename, lexErr.Line, lexErr.Column, lexErr.Message)
		}
		return fmt.Sprintf("%d:%d: %s", lexErr.Line, lexErr.Column, lexErr.Message)
	}
	return err.Error()
}
