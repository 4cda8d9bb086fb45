package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"github.com/forPelevin/shortsplit/internal/config"
	"github.com/forPelevin/shortsplit/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-video-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

type fakeVideo struct {
	duration time.Duration
}

func (f fakeVideo) ProbeDuration(context.Context, string) (time.Duration, error) {
	return f.duration, nil
}

func (fakeVideo) ExtractSegment(_ context.Context, _ string, _, _ time.Duration, out string) error {
	return os.WriteFile(out, nil, 0o644)
}

func (fakeVideo) ExtractAudioMono16k(_ context.Context, _, out string) error {
	return os.WriteFile(out, nil, 0o644)
}

func (fakeVideo) RenderVertical(_ context.Context, _, _, _, out string) error {
	return os.WriteFile(out, nil, 0o644)
}

type fakeASR struct{}

func (fakeASR) Transcribe(context.Context, string, string) (types.Transcript, error) {
	return types.Transcript{Chunks: []types.Chunk{{
		Text:  "hi there",
		Words: []types.Word{{Start: 0.5, End: 0.9, Text: "hi"}, {Start: 1.0, End: 1.3, Text: "there"}},
	}}}, nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	in := filepath.Join(t.TempDir(), "Talk Show.mp4")
	if err := os.WriteFile(in, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := FromSettings(in, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	cfg.OutDir = filepath.Join(t.TempDir(), "out")
	cfg.Video = fakeVideo{duration: 150 * time.Second}
	cfg.ASR = fakeASR{}
	return cfg
}

func TestRun_WritesManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 2
	var progress bytes.Buffer
	cfg.Progress = &progress

	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if filepath.Dir(res.RunDir) != cfg.OutDir || !strings.HasPrefix(filepath.Base(res.RunDir), "talk-show-") {
		t.Fatalf("unexpected run dir: %s", res.RunDir)
	}
	if len(res.Manifest.Segments) != 3 {
		t.Fatalf("expected 3 segments for 150s, got %d", len(res.Manifest.Segments))
	}
	if res.Manifest.RunID == "" || res.Manifest.DurationS != 150 || res.Manifest.SegmentLen != 60 {
		t.Fatalf("unexpected manifest header: %+v", res.Manifest)
	}

	b, err := os.ReadFile(filepath.Join(res.RunDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got types.Manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if diff := cmp.Diff(res.Manifest, got); diff != "" {
		t.Fatalf("manifest on disk differs (-want +got):\n%s", diff)
	}
	last := got.Segments[2]
	if last.StartSec != 120 || last.EndSec != 180 || last.File != "final/clip_02_sub.mp4" {
		t.Fatalf("unexpected last segment: %+v", last)
	}
	if progress.Len() == 0 {
		t.Fatal("expected progress output")
	}
}

func TestRun_OutputLocked(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(cfg.OutDir, lockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = Run(context.Background(), cfg)
	if !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestFromSettings_ResolvesAssets(t *testing.T) {
	s := config.Default()
	s.Paths.AssetsDir = "/opt/shortsplit"
	s.Recognizer.Engine = config.EngineWhisperCpp
	cfg, err := FromSettings("in.mp4", s)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FontsDir != filepath.Join("/opt/shortsplit", "assets/fonts") {
		t.Fatalf("fonts dir = %s", cfg.FontsDir)
	}
	if cfg.WhisperModel != filepath.Join("/opt/shortsplit", "models/ggml-base.bin") {
		t.Fatalf("whisper model = %s", cfg.WhisperModel)
	}
	if cfg.WhisperBin != "whisper-cli" || cfg.FFmpegPath != "ffmpeg" {
		t.Fatalf("bare binaries must stay on PATH: %s %s", cfg.WhisperBin, cfg.FFmpegPath)
	}
	if cfg.RecognizerTimeout != 600*time.Second {
		t.Fatalf("timeout = %s", cfg.RecognizerTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	base := testConfig(t)
	base.ASR = nil

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.InputMP4 = "" }, want: "input is empty"},
		{name: "segment", mutate: func(c *Config) { c.SegmentSeconds = 0 }, want: "segment length"},
		{name: "formats", mutate: func(c *Config) { c.Formats = nil }, want: "subtitle format"},
		{name: "engine", mutate: func(c *Config) { c.Engine = "kaldi" }, want: "unknown recognizer engine"},
		{name: "limits", mutate: func(c *Config) { c.Limits.MaxChars = 0 }, want: "invalid configuration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
