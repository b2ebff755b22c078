// Package cli implements the mop command line. Host programs that register
// their own helper modules build their own binary around Main.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/mop/internal/catalog"
	"github.com/funvibe/mop/internal/config"
	"github.com/funvibe/mop/internal/ext"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
	mop "github.com/funvibe/mop/pkg/embed"
)

const literalHelp = `Literals: null true false 42 42L 42G 3.5 3.5f 3.5d 'c' "text" [1, 2] (Number)42
Use -- before arguments that start with a minus sign.`

// Main runs the command line with os.Args and exits with its status.
func Main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks failures caused by how the command was invoked.
type usageError struct{ error }

type app struct {
	stdout     io.Writer
	stderr     io.Writer
	logger     *slog.Logger
	color      bool
	configPath string
	debug      bool
	started    bool // set once argument parsing has succeeded
	rt         *mop.Runtime
}

// Run executes one command and returns the process exit status: 0 on
// success, 2 for usage errors and 1 for everything else.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ue usageError
	if !a.started || errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Usage: %s\n", cmd.UseLine())
		return 2
	}
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mop",
		Short:         "Inspect and exercise method dispatch",
		Long:          "mop resolves and invokes methods through the dispatch core and manages mop.yaml extensions.\n\n" + literalHelp,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.started = true
			level := slog.LevelWarn
			if a.debug || os.Getenv(config.TraceEnvVar) != "" {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
			a.color = colorEnabled(a.stdout)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError{errors.New("no command given")}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "mop.yaml to apply (default: nearest mop.yaml above the working directory)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log resolution details to stderr (also enabled by "+config.TraceEnvVar+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "list [class]",
			Short: "List method tables",
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.runList,
		},
		literalCommand(&cobra.Command{
			Use:   "call <receiver> <method> [args...]",
			Short: "Resolve and invoke a method on literal values",
			Args:  cobra.MinimumNArgs(2),
			RunE:  a.runCall,
		}),
		literalCommand(&cobra.Command{
			Use:   "static <class> <method> [args...]",
			Short: "Invoke a static method",
			Args:  cobra.MinimumNArgs(2),
			RunE:  a.runStatic,
		}),
		&cobra.Command{
			Use:   "resolve <class> <method> [argClass...]",
			Short: "Show which candidate a signature selects",
			Args:  cobra.MinimumNArgs(2),
			RunE:  a.runResolve,
		},
		&cobra.Command{
			Use:   "inspect <package> [package...]",
			Short: "Suggest mop.yaml bindings for Go packages",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runInspect,
		},
		&cobra.Command{
			Use:   "dump <file.db>",
			Short: "Export method tables to a SQLite catalog",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runDump,
		},
	)
	return root
}

// literalCommand stops flag parsing at the first argument so literals
// after the receiver may start with a minus sign.
func literalCommand(cmd *cobra.Command) *cobra.Command {
	cmd.Long = cmd.Short + ".\n\n" + literalHelp
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// colorEnabled follows the NO_COLOR convention and only colors terminals.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) bold(s string) string {
	if !a.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// setup creates the runtime and applies the configuration, either the one
// given with --config or the nearest mop.yaml above the working directory.
func (a *app) setup() error {
	a.rt = mop.New(mop.WithLogger(a.logger))

	path := a.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if path, err = ext.FindConfig(wd); err != nil {
			return err
		}
		if path == "" {
			a.logger.Debug("cli: no configuration found", "dir", wd)
			return nil
		}
	}
	cfg, err := ext.LoadConfig(path)
	if err != nil {
		return err
	}
	for _, module := range cfg.Modules() {
		if !ext.IsModuleRegistered(module) {
			return fmt.Errorf("%s: helper module %q is not compiled into this binary (available: %s)",
				path, module, strings.Join(ext.HelperModules(), ", "))
		}
	}
	return a.rt.ApplyConfig(cfg)
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	var only string
	if len(args) > 0 {
		only = args[0]
		if _, err := a.rt.Universe().Lookup(only); err != nil {
			return err
		}
	}

	current := ""
	for _, m := range catalog.Collect(a.rt.Registry()) {
		if only != "" && m.Class != only {
			continue
		}
		if m.Class != current {
			if current != "" {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintln(a.stdout, a.bold(m.Class))
			current = m.Class
		}
		fmt.Fprintf(a.stdout, "  %s\n", m.Display)
	}
	return nil
}

func (a *app) parseArgs(raw []string) ([]object.Object, error) {
	out := make([]object.Object, len(raw))
	for i, s := range raw {
		v, err := parseLiteral(s, a.rt.Universe(), a.rt.Resolver())
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func (a *app) runCall(cmd *cobra.Command, args []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	recv, err := parseLiteral(args[0], a.rt.Universe(), a.rt.Resolver())
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	callArgs, err := a.parseArgs(args[2:])
	if err != nil {
		return err
	}
	result, err := a.rt.Resolver().ResolveAndInvoke(recv, args[1], callArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Inspect())
	return nil
}

func (a *app) runStatic(cmd *cobra.Command, args []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	cls, err := a.rt.Universe().Lookup(args[0])
	if err != nil {
		return err
	}
	callArgs, err := a.parseArgs(args[2:])
	if err != nil {
		return err
	}
	result, err := a.rt.Resolver().InvokeStatic(cls, args[1], callArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result.Inspect())
	return nil
}

func (a *app) runResolve(cmd *cobra.Command, args []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	u := a.rt.Universe()
	recv, err := u.Lookup(args[0])
	if err != nil {
		return err
	}
	sig := make([]*typesystem.Class, 0, len(args)-2)
	for _, name := range args[2:] {
		c, err := u.Lookup(name)
		if err != nil {
			return err
		}
		sig = append(sig, c)
	}
	res, err := a.rt.Resolver().Resolve(recv, args[1], sig...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s  score=%d", res.Candidate, res.Score)
	if res.Packed {
		fmt.Fprint(a.stdout, "  packed")
	}
	fmt.Fprintln(a.stdout)
	return nil
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	result, err := ext.NewInspector(".").Inspect(args...)
	if err != nil {
		return err
	}
	for _, pkg := range result.Packages {
		fmt.Fprintf(a.stdout, "# %s\n", pkg.Path)
		var skipped []string
		for _, f := range pkg.Funcs {
			if !f.Bindable() {
				skipped = append(skipped, f.GoName)
			}
		}
		if len(skipped) > 0 {
			sort.Strings(skipped)
			fmt.Fprintf(a.stdout, "# not bindable: %s\n", strings.Join(skipped, ", "))
		}
		out, err := yaml.Marshal(pkg.Suggest())
		if err != nil {
			return err
		}
		a.stdout.Write(out)
	}
	return nil
}

func (a *app) runDump(cmd *cobra.Command, args []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	ctx := cmd.Context()
	cat, err := catalog.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer cat.Close()
	n, err := cat.Export(ctx, a.rt.Registry())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "exported %d methods to %s\n", n, args[0])
	return nil
}
