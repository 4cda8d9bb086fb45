package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/shortsplit/internal/domain/cues"
	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
)

//go:embed sample_config.toml
var sampleConfig string

type Paths struct {
	OutDir    string `toml:"out_dir" yaml:"out_dir"`
	AssetsDir string `toml:"assets_dir" yaml:"assets_dir"`
	FFmpeg    string `toml:"ffmpeg" yaml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe" yaml:"ffprobe"`
}

type Segments struct {
	LengthSeconds int `toml:"length_seconds" yaml:"length_seconds"`
	Workers       int `toml:"workers" yaml:"workers"`
}

type Cues struct {
	MaxChars      int     `toml:"max_chars" yaml:"max_chars"`
	MaxGapSeconds float64 `toml:"max_gap_seconds" yaml:"max_gap_seconds"`
}

type Subtitles struct {
	Formats   []string `toml:"formats" yaml:"formats"`
	Font      string   `toml:"font" yaml:"font"`
	FontsDir  string   `toml:"fonts_dir" yaml:"fonts_dir"`
	FontSize  int      `toml:"font_size" yaml:"font_size"`
	PosY      int      `toml:"pos_y" yaml:"pos_y"`
	FadeInMS  int      `toml:"fade_in_ms" yaml:"fade_in_ms"`
	FadeOutMS int      `toml:"fade_out_ms" yaml:"fade_out_ms"`
}

type Recognizer struct {
	// Engine is "vosk" or "whispercpp".
	Engine         string `toml:"engine" yaml:"engine"`
	VoskURL        string `toml:"vosk_url" yaml:"vosk_url"`
	WhisperBin     string `toml:"whisper_bin" yaml:"whisper_bin"`
	WhisperModel   string `toml:"whisper_model" yaml:"whisper_model"`
	Language       string `toml:"language" yaml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

type Render struct {
	BurnSubtitles bool   `toml:"burn_subtitles" yaml:"burn_subtitles"`
	Width         int    `toml:"width" yaml:"width"`
	Height        int    `toml:"height" yaml:"height"`
	Preset        string `toml:"preset" yaml:"preset"`
	CRF           int    `toml:"crf" yaml:"crf"`
}

type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type Config struct {
	Paths      Paths      `toml:"paths" yaml:"paths"`
	Segments   Segments   `toml:"segments" yaml:"segments"`
	Cues       Cues       `toml:"cues" yaml:"cues"`
	Subtitles  Subtitles  `toml:"subtitles" yaml:"subtitles"`
	Recognizer Recognizer `toml:"recognizer" yaml:"recognizer"`
	Render     Render     `toml:"render" yaml:"render"`
	Logging    Logging    `toml:"logging" yaml:"logging"`
}

// Load reads path on top of Default and applies environment overrides.
// An empty path yields the defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()
		if err := decode(f, filepath.Ext(path), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func decode(r io.Reader, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml", "":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported config extension %q (want .toml, .yaml or .yml)", ext)
}

// ApplyEnv overrides fields from SHORTSPLIT_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("SHORTSPLIT_OUT_DIR", &c.Paths.OutDir)
	set("SHORTSPLIT_ASSETS_DIR", &c.Paths.AssetsDir)
	set("SHORTSPLIT_FFMPEG", &c.Paths.FFmpeg)
	set("SHORTSPLIT_FFPROBE", &c.Paths.FFprobe)
	set("SHORTSPLIT_ENGINE", &c.Recognizer.Engine)
	set("SHORTSPLIT_VOSK_URL", &c.Recognizer.VoskURL)
	set("SHORTSPLIT_WHISPER_BIN", &c.Recognizer.WhisperBin)
	set("SHORTSPLIT_WHISPER_MODEL", &c.Recognizer.WhisperModel)
	set("SHORTSPLIT_LOG_LEVEL", &c.Logging.Level)
	set("SHORTSPLIT_LOG_FORMAT", &c.Logging.Format)
}

// Sample returns a commented TOML config with every default spelled out.
func Sample() string { return sampleConfig }

func (c Config) CueLimits() cues.Limits {
	return cues.Limits{MaxChars: c.Cues.MaxChars, MaxGap: c.Cues.MaxGapSeconds}
}

func (c Config) Style() subtitles.Style {
	return subtitles.Style{
		FontName:     c.Subtitles.Font,
		FontSize:     c.Subtitles.FontSize,
		PosY:         c.Subtitles.PosY,
		FadeInMS:     c.Subtitles.FadeInMS,
		FadeOutMS:    c.Subtitles.FadeOutMS,
		CanvasWidth:  c.Render.Width,
		CanvasHeight: c.Render.Height,
	}
}

func (c Config) SubtitleFormats() ([]subtitles.Format, error) {
	out := make([]subtitles.Format, 0, len(c.Subtitles.Formats))
	seen := map[subtitles.Format]bool{}
	for _, s := range c.Subtitles.Formats {
		f, err := subtitles.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// Resolver returns the asset resolver rooted at paths.assets_dir.
func (c Config) Resolver() Resolver { return Resolver{Base: c.Paths.AssetsDir} }
