package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/shortsplit/internal/config"
	"github.com/forPelevin/shortsplit/internal/pipeline"
	"github.com/forPelevin/shortsplit/internal/types"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Split, transcribe, subtitle and render a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, args[0])
		},
	}

	f := cmd.Flags()
	f.String("out", "", "Output directory")
	f.Int("segment", 0, "Segment length in seconds")
	f.Int("workers", 0, "Segments processed in parallel")
	f.Int("max-chars", 0, "Max characters per subtitle cue")
	f.Float64("max-gap", 0, "Max silence in seconds inside one cue")
	f.StringSlice("formats", nil, "Subtitle formats to write (srt, ass)")
	f.Bool("no-burn", false, "Do not burn subtitles into the vertical output")
	f.String("engine", "", "Recognizer engine: vosk, whispercpp")
	f.String("vosk-url", "", "Vosk server WebSocket URL")
	f.String("whisper-bin", "", "whisper.cpp CLI binary")
	f.String("whisper-model", "", "whisper.cpp model file")
	f.String("language", "", "Recognition language (whisper.cpp)")
	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded settings.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("out") {
		cfg.Paths.OutDir, _ = f.GetString("out")
	}
	if f.Changed("segment") {
		cfg.Segments.LengthSeconds, _ = f.GetInt("segment")
	}
	if f.Changed("workers") {
		cfg.Segments.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("max-chars") {
		cfg.Cues.MaxChars, _ = f.GetInt("max-chars")
	}
	if f.Changed("max-gap") {
		cfg.Cues.MaxGapSeconds, _ = f.GetFloat64("max-gap")
	}
	if f.Changed("formats") {
		cfg.Subtitles.Formats, _ = f.GetStringSlice("formats")
	}
	if noBurn, _ := f.GetBool("no-burn"); noBurn {
		cfg.Render.BurnSubtitles = false
	}
	if f.Changed("engine") {
		cfg.Recognizer.Engine, _ = f.GetString("engine")
	}
	if f.Changed("vosk-url") {
		cfg.Recognizer.VoskURL, _ = f.GetString("vosk-url")
	}
	if f.Changed("whisper-bin") {
		cfg.Recognizer.WhisperBin, _ = f.GetString("whisper-bin")
	}
	if f.Changed("whisper-model") {
		cfg.Recognizer.WhisperModel, _ = f.GetString("whisper-model")
	}
	if f.Changed("language") {
		cfg.Recognizer.Language, _ = f.GetString("language")
	}
}

func run(cmd *cobra.Command, root *rootOptions, input string) error {
	settings, err := root.loadSettings()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &settings)
	if err := validSettings(settings); err != nil {
		return err
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	cfg, err := pipeline.FromSettings(absIn, settings)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	log, err := newLogger(settings, stderr)
	if err != nil {
		return err
	}
	cfg.Log = log
	if isTerminal(stderr) {
		cfg.Progress = stderr
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summaryTable(res.Manifest))
	fmt.Fprintf(cmd.OutOrStdout(), "output: %s\n", res.RunDir)
	return nil
}

func summaryTable(m types.Manifest) string {
	rows := make([][]string, 0, len(m.Segments))
	for _, s := range m.Segments {
		rows = append(rows, []string{
			strconv.Itoa(s.Index + 1),
			strconv.Itoa(s.StartSec),
			strconv.Itoa(s.EndSec),
			strconv.Itoa(s.Words),
			strconv.Itoa(s.Cues),
			s.File,
		})
	}
	return renderTable([]string{"#", "Start (s)", "End (s)", "Words", "Cues", "File"}, rows, 0, 1, 2, 3, 4)
}
