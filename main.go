package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/thiremani/kmangle/backend"
	"github.com/thiremani/kmangle/mangle"
	"github.com/thiremani/kmangle/parser"
	"golang.org/x/sync/errgroup"
)

var errFailed = errors.New("one or more files failed")

// options are the settings of one run: kmangle.toml overridden by flags.
type options struct {
	maxLen int
	format string
	jobs   int
	cache  *symbolCache // nil when caching is off
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kmangle",
		Short:         "Mangle sketch declarations into linker symbols",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, err := cmd.Flags().GetString("color")
			if err != nil {
				return err
			}
			return setColorMode(mode)
		},
	}
	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("max-length", 0, "replace symbols longer than this with their hashed alias (0 = no limit)")
	flags.String("format", FORMAT_TABLE, "output format (table|plain)")
	flags.Bool("no-cache", false, "do not read or write the symbol cache")

	names := &cobra.Command{
		Use:   "names FILE...",
		Short: "Print the symbol of every declaration and mangle request",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runNames,
	}
	names.Flags().Int("jobs", 0, "max files processed in parallel (0 = GOMAXPROCS)")

	ir := &cobra.Command{
		Use:   "ir FILE",
		Short: "Print an LLVM module declaring every function and variable symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runIR,
	}
	ir.Flags().StringP("output", "o", "", "write the module to this file instead of stdout")

	hash := &cobra.Command{
		Use:   "hash NAME...",
		Short: "Print the fixed-width alias of mangled names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEach(cmd, args, "HASHED", mangle.Hashed)
		},
	}

	ident := &cobra.Command{
		Use:   "ident NAME...",
		Short: "Print the identifier encoding of names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEach(cmd, args, "ENCODED", mangle.Identifier)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}

	root.AddCommand(names, ir, hash, ident, version)
	return root
}

// loadOptions reads kmangle.toml from the working directory upwards and
// applies the flags the user set explicitly. The symbol cache is opened only
// when withCache is set.
func loadOptions(cmd *cobra.Command, withCache bool) (options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return options{}, fmt.Errorf("get working directory: %w", err)
	}
	cfg, _, err := loadConfig(cwd)
	if err != nil {
		return options{}, err
	}

	flags := cmd.Flags()
	opts := options{maxLen: cfg.Symbols.MaxLength, format: cfg.Output.Format}
	if flags.Changed("max-length") {
		if opts.maxLen, err = flags.GetInt("max-length"); err != nil {
			return options{}, err
		}
		if opts.maxLen < 0 {
			return options{}, fmt.Errorf("--max-length must not be negative, got %d", opts.maxLen)
		}
	}
	if flags.Changed("format") {
		if opts.format, err = flags.GetString("format"); err != nil {
			return options{}, err
		}
		if err := validateFormat(opts.format); err != nil {
			return options{}, err
		}
	}
	if flags.Lookup("jobs") != nil {
		if opts.jobs, err = flags.GetInt("jobs"); err != nil {
			return options{}, err
		}
	}
	if opts.jobs <= 0 {
		opts.jobs = runtime.GOMAXPROCS(0)
	}

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return options{}, err
	}
	if withCache && cfg.Cache.Enabled && !noCache {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		if opts.cache, err = openSymbolCache(dir); err != nil {
			printWarning(cmd.ErrOrStderr(), "symbol cache disabled: %v", err)
		}
	}
	return opts, nil
}

type fileResult struct {
	symbols []parser.Symbol
	err     error
	warning error // cache trouble, reported without failing the file
}

func runNames(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd, true)
	if err != nil {
		return err
	}

	results := make([]fileResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(opts.jobs, len(args)))
	for i, file := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fileSymbols(file, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	header := []string{"PATH", "KIND", "SYMBOL"}
	if len(args) > 1 {
		header = append([]string{"FILE"}, header...)
	}
	var rows [][]string
	failed := false
	for i, r := range results {
		if r.warning != nil {
			printWarning(errOut, "%s: %v", args[i], r.warning)
		}
		if r.err != nil {
			printError(errOut, r.err)
			failed = true
			continue
		}
		for _, s := range r.symbols {
			row := []string{s.Path, s.Kind, s.Name}
			if len(args) > 1 {
				row = append([]string{args[i]}, row...)
			}
			rows = append(rows, row)
		}
	}
	if len(rows) > 0 {
		writeTable(out, opts.format, header, rows)
	}
	if failed {
		return errFailed
	}
	return nil
}

// fileSymbols returns the symbols of one file, from the cache when the same
// source was mangled before under the same length limit.
func fileSymbols(file string, opts options) fileResult {
	src, err := os.ReadFile(file)
	if err != nil {
		return fileResult{err: fmt.Errorf("read %s: %w", file, err)}
	}

	var res fileResult
	if opts.cache != nil {
		syms, ok, err := opts.cache.Get(file, string(src), opts.maxLen)
		if err == nil && ok {
			return fileResult{symbols: syms}
		}
		res.warning = err
	}

	unit, err := parser.Parse(file, string(src))
	if err != nil {
		res.err = err
		return res
	}
	syms, err := unit.Symbols()
	if err != nil {
		res.err = fmt.Errorf("%s: %w", file, err)
		return res
	}
	for i := range syms {
		syms[i].Name = mangle.Shorten(syms[i].Name, opts.maxLen)
	}
	res.symbols = syms

	// a failed read still rewrites the entry so the next run starts clean
	if opts.cache != nil {
		res.warning = errors.Join(res.warning, opts.cache.Put(file, string(src), opts.maxLen, syms))
	}
	return res
}

func runIR(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd, false)
	if err != nil {
		return err
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	unit, err := parser.Parse(file, string(src))
	if err != nil {
		return err
	}
	ir, err := backend.Emit(unit, opts.maxLen)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), ir)
		return err
	}
	if err := os.WriteFile(outPath, []byte(ir), 0644); err != nil {
		return fmt.Errorf("write IR to %s: %w", outPath, err)
	}
	return nil
}

// runEach prints NAME and f(NAME) for every argument.
func runEach(cmd *cobra.Command, args []string, column string, f func(string) string) error {
	opts, err := loadOptions(cmd, false)
	if err != nil {
		return err
	}
	rows := make([][]string, len(args))
	for i, a := range args {
		rows[i] = []string{a, f(a)}
	}
	writeTable(cmd.OutOrStdout(), opts.format, []string{"NAME", column}, rows)
	return nil
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errFailed) {
			printError(root.ErrOrStderr(), err)
		}
		os.Exit(1)
	}
}
