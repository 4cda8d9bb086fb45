package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "shortsplit",
		Short:        "Split a video into subtitled vertical shorts",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceErrors = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.toml, .yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Shorthand for --log-level=debug")

	root.AddCommand(
		newRunCommand(opts),
		newPlanCommand(opts),
		newCuesCommand(opts),
		newConfigCommand(opts),
	)
	return root
}
