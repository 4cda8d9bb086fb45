package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/forPelevin/shortsplit/internal/config"
	"github.com/forPelevin/shortsplit/internal/logging"
)

// loadSettings reads the config file and applies the persistent logging
// flags on top. The result is not validated.
func (o *rootOptions) loadSettings() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func validSettings(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
