package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forPelevin/shortsplit/internal/domain"
	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSample_MatchesDefault(t *testing.T) {
	var cfg Config
	if err := decode(strings.NewReader(Sample()), ".toml", &cfg); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("sample config drifted from defaults (-default +sample):\n%s", diff)
	}
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "c.toml", `
[segments]
length_seconds = 30

[cues]
max_chars = 42

[subtitles]
formats = ["srt"]

[render]
burn_subtitles = false
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Segments.LengthSeconds != 30 || cfg.Cues.MaxChars != 42 || cfg.Render.BurnSubtitles {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Cues.MaxGapSeconds != 0.8 {
		t.Fatalf("defaults lost: %+v", cfg.Cues)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "c.yaml", `
recognizer:
  engine: whispercpp
  whisper_model: /models/ggml-small.bin
subtitles:
  pos_y: 1300
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Recognizer.Engine != EngineWhisperCpp || cfg.Subtitles.PosY != 1300 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	for name, content := range map[string]string{
		"c.toml": "[cues]\nmax_words = 3\n",
		"c.yml":  "cues:\n  max_words: 3\n",
	} {
		if _, err := Load(writeFile(t, name, content)); err == nil {
			t.Errorf("%s: expected unknown field error", name)
		}
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	if _, err := Load(writeFile(t, "c.json", "{}")); err == nil || !strings.Contains(err.Error(), "unsupported config extension") {
		t.Fatalf("expected extension error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SHORTSPLIT_VOSK_URL":  "ws://asr:2700",
		"SHORTSPLIT_LOG_LEVEL": " debug ",
		"SHORTSPLIT_OUT_DIR":   "",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if cfg.Recognizer.VoskURL != "ws://asr:2700" || cfg.Logging.Level != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Paths.OutDir != "out" {
		t.Fatalf("empty env value must not override, got %q", cfg.Paths.OutDir)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Segments.LengthSeconds = 0
	cfg.Cues.MaxChars = 0
	cfg.Subtitles.Formats = []string{"srt"}
	cfg.Recognizer.Engine = "kaldi"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{
		"segments.length_seconds",
		"cues:",
		"render.burn_subtitles requires",
		`recognizer.engine "kaldi"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected wrapped ErrInvalidConfiguration, got %v", err)
	}
}

func TestValidate_VoskURL(t *testing.T) {
	cfg := Default()
	cfg.Recognizer.VoskURL = "http://asr:2700"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "vosk_url") {
		t.Fatalf("expected vosk_url error, got %v", err)
	}
}

func TestDerived(t *testing.T) {
	cfg := Default()
	cfg.Subtitles.Formats = []string{"srt", "ASS", "srt"}
	formats, err := cfg.SubtitleFormats()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]subtitles.Format{subtitles.FormatSRT, subtitles.FormatASS}, formats); diff != "" {
		t.Fatalf("formats (-want +got):\n%s", diff)
	}
	st := cfg.Style()
	if st.CanvasWidth != 1080 || st.PosY != 1500 || st.FontName != "Oswald" {
		t.Fatalf("unexpected style: %+v", st)
	}
	lim := cfg.CueLimits()
	if lim.MaxChars != 60 || lim.MaxGap != 0.8 {
		t.Fatalf("unexpected limits: %+v", lim)
	}
}

func TestResolver(t *testing.T) {
	r := Resolver{Base: "/opt/shortsplit"}
	tests := map[string]string{
		"":                     "",
		"assets/fonts":         "/opt/shortsplit/assets/fonts",
		"/usr/share/fonts":     "/usr/share/fonts",
		"models/ggml-base.bin": "/opt/shortsplit/models/ggml-base.bin",
	}
	for in, want := range tests {
		if got := r.Resolve(in); got != filepath.FromSlash(want) {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
	if got := r.ResolveBinary("ffmpeg"); got != "ffmpeg" {
		t.Errorf("ResolveBinary(ffmpeg) = %q", got)
	}
	if got := r.ResolveBinary("bin/whisper-cli"); got != filepath.FromSlash("/opt/shortsplit/bin/whisper-cli") {
		t.Errorf("ResolveBinary(bin/whisper-cli) = %q", got)
	}
	if got := (Resolver{}).Resolve("assets/fonts"); got != "assets/fonts" {
		t.Errorf("empty base should keep relative path, got %q", got)
	}
}
