package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	configPath string
)

// errSilentFailure is returned by a subcommand's RunE once it has already
// printed its own diagnostic — SilenceErrors means cobra won't print this
// one again, but Execute() still returns non-nil so main can exit(1).
var errSilentFailure = errors.New("compilation failed")

var rootCmd = &cobra.Command{
	Use:   "lathec [files...]",
	Short: "Compile a small C-like language to textual LLVM IR",
	Long: `lathec is an ahead-of-time compiler that lowers a small C-like
language directly to textual LLVM IR.

Invoked bare with one or more source files, lathec behaves as a
compatibility alias for "build" that never exits non-zero: any pipeline
error is reported as a single "Error occurred: <message>" line on stdout
instead of a real error. "build" and "check" use ordinary exit codes.`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		runBuild(cmd, args, cfg, true)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <file> [<file>...]",
	Short: "Compile one or more source files to LLVM IR",
	Long: `build compiles a single file's IR to stdout, or — given more than
one file — compiles all of them concurrently, writing each result next to
its source with a ".ll" extension.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if code := runBuild(cmd, args, cfg, false); code != 0 {
			return errSilentFailure
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a source file for syntax errors without emitting IR",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := CheckSource(string(data)); err != nil {
			reportError(cmd, stageForErr(err), fmt.Errorf("%s: %w", args[0], err), false)
			return errSilentFailure
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit diagnostics as JSON instead of plain text")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the CLI; it is the entire body of main().
func Execute() error {
	return rootCmd.Execute()
}

// runBuild compiles files (one inline to stdout, or several concurrently
// to sibling .ll files) and returns a process exit code. In legacy mode
// every failure is swallowed into an "Error occurred: <message>" stdout
// line and the code is always 0.
func runBuild(cmd *cobra.Command, files []string, cfg Config, legacy bool) int {
	if len(files) == 1 {
		ir, err := CompileFile(files[0], cfg)
		if err != nil {
			return reportError(cmd, stageForErr(err), err, legacy)
		}
		fmt.Fprint(cmd.OutOrStdout(), ir)
		return 0
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results := CompileBatch(ctx, files, cfg)
	exitCode := 0
	for _, r := range results {
		if r.Err != nil {
			c := reportError(cmd, stageForErr(r.Err), fmt.Errorf("%s: %w", r.Path, r.Err), legacy)
			if c != 0 {
				exitCode = c
			}
			continue
		}

		outPath := outputPathFor(r.Path)
		if err := os.WriteFile(outPath, []byte(r.IR), 0644); err != nil {
			c := reportError(cmd, stageEmit, err, legacy)
			if c != 0 {
				exitCode = c
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", r.Path, outPath)
	}
	return exitCode
}

func outputPathFor(path string) string {
	ext := filepath.Ext(path)
	if ext != "" {
		return strings.TrimSuffix(path, ext) + ".ll"
	}
	return path + ".ll"
}

func stageForErr(err error) compileStage {
	switch err.(type) {
	case *TokenizeError:
		return stageTokenize
	case *ParseError, *UnsupportedOperatorError:
		return stageParse
	default:
		return stageEmit
	}
}

// reportError prints one diagnostic (JSON or plain, legacy or not) and
// returns the exit code it implies.
func reportError(cmd *cobra.Command, stage compileStage, err error, legacy bool) int {
	if legacy {
		fmt.Fprintf(cmd.OutOrStdout(), "Error occurred: %s\n", err)
		return 0
	}

	if jsonOutput {
		doc, jerr := newDiagnostic(stage, err).JSON()
		if jerr == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), doc)
			return 1
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	return 1
}
