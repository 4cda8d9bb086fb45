package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
)

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if strings.TrimSpace(c.Paths.OutDir) == "" {
		add("paths.out_dir must be set")
	}
	if c.Segments.LengthSeconds <= 0 {
		add("segments.length_seconds must be > 0")
	}
	if c.Segments.Workers <= 0 {
		add("segments.workers must be > 0")
	}
	if err := c.CueLimits().Validate(); err != nil {
		add("cues: %w", err)
	}
	formats, err := c.SubtitleFormats()
	if err != nil {
		add("subtitles.formats: %w", err)
	}
	if err := c.Style().Validate(); err != nil {
		add("subtitles: %w", err)
	}
	if c.Render.BurnSubtitles && !slices.Contains(formats, subtitles.FormatASS) {
		add("render.burn_subtitles requires \"ass\" in subtitles.formats")
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		add("render.crf must be between 0 and 51")
	}
	if strings.TrimSpace(c.Render.Preset) == "" {
		add("render.preset must be set")
	}
	if c.Recognizer.TimeoutSeconds < 0 {
		add("recognizer.timeout_seconds must be >= 0")
	}

	switch c.Recognizer.Engine {
	case EngineVosk:
		u, err := url.Parse(c.Recognizer.VoskURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			add("recognizer.vosk_url %q must be a ws:// or wss:// URL", c.Recognizer.VoskURL)
		}
	case EngineWhisperCpp:
		if strings.TrimSpace(c.Recognizer.WhisperModel) == "" {
			add("recognizer.whisper_model is required for engine %q", EngineWhisperCpp)
		}
	default:
		add("recognizer.engine %q is invalid; valid values: %s, %s", c.Recognizer.Engine, EngineVosk, EngineWhisperCpp)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		add("logging.format %q is invalid; valid values: text, json", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level %q is invalid; valid values: debug, info, warn, error", c.Logging.Level)
	}

	return errors.Join(errs...)
}
