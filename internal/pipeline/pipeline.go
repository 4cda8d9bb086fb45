package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/forPelevin/shortsplit/internal/config"
	"github.com/forPelevin/shortsplit/internal/domain/cues"
	"github.com/forPelevin/shortsplit/internal/domain/segments"
	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
	"github.com/forPelevin/shortsplit/internal/ports"
	"github.com/forPelevin/shortsplit/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/shortsplit/internal/ports/adapters/vosk"
	"github.com/forPelevin/shortsplit/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/shortsplit/internal/types"
	"github.com/forPelevin/shortsplit/internal/usecase"
)

const lockName = ".shortsplit.lock"

// ErrOutputLocked is returned when another run holds the output root.
var ErrOutputLocked = errors.New("output directory is in use by another run")

type Config struct {
	InputMP4       string
	OutDir         string
	SegmentSeconds int
	Workers        int

	Limits        cues.Limits
	Formats       []subtitles.Format
	Style         subtitles.Style
	BurnSubtitles bool
	FontsDir      string

	FFmpegPath  string
	FFprobePath string
	Preset      string
	CRF         int

	Engine            string
	VoskURL           string
	WhisperBin        string
	WhisperModel      string
	Language          string
	RecognizerTimeout time.Duration

	Log *slog.Logger
	// Progress, when set, receives a segment progress bar.
	Progress io.Writer

	// Video and ASR replace the adapters built from the fields above.
	Video ports.VideoTool
	ASR   ports.ASR
}

// FromSettings maps loaded settings onto a pipeline Config, resolving asset
// paths against the configured assets directory.
func FromSettings(input string, s config.Config) (Config, error) {
	formats, err := s.SubtitleFormats()
	if err != nil {
		return Config{}, err
	}
	r := s.Resolver()
	return Config{
		InputMP4:          input,
		OutDir:            s.Paths.OutDir,
		SegmentSeconds:    s.Segments.LengthSeconds,
		Workers:           s.Segments.Workers,
		Limits:            s.CueLimits(),
		Formats:           formats,
		Style:             s.Style(),
		BurnSubtitles:     s.Render.BurnSubtitles,
		FontsDir:          r.Resolve(s.Subtitles.FontsDir),
		FFmpegPath:        r.ResolveBinary(s.Paths.FFmpeg),
		FFprobePath:       r.ResolveBinary(s.Paths.FFprobe),
		Preset:            s.Render.Preset,
		CRF:               s.Render.CRF,
		Engine:            s.Recognizer.Engine,
		VoskURL:           s.Recognizer.VoskURL,
		WhisperBin:        r.ResolveBinary(s.Recognizer.WhisperBin),
		WhisperModel:      r.Resolve(s.Recognizer.WhisperModel),
		Language:          s.Recognizer.Language,
		RecognizerTimeout: time.Duration(s.Recognizer.TimeoutSeconds) * time.Second,
	}, nil
}

func (c Config) Validate() error {
	if c.InputMP4 == "" {
		return errors.New("input is empty")
	}
	st, err := os.Stat(c.InputMP4)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("input %s is a directory", c.InputMP4)
	}
	if c.SegmentSeconds <= 0 {
		return fmt.Errorf("segment length must be > 0")
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if err := c.Style.Validate(); err != nil {
		return err
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("at least one subtitle format is required")
	}
	if c.ASR == nil {
		switch c.Engine {
		case config.EngineVosk:
			if c.VoskURL == "" {
				return fmt.Errorf("vosk url is required")
			}
		case config.EngineWhisperCpp:
			if c.WhisperModel == "" {
				return fmt.Errorf("whisper model path is required")
			}
		default:
			return fmt.Errorf("unknown recognizer engine %q", c.Engine)
		}
	}
	return nil
}

type Result struct {
	RunDir   string
	Manifest types.Manifest
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	video := cfg.videoTool(log)
	asr := cfg.recognizer(log)

	outRoot := cfg.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return Result{}, err
	}
	lock := flock.New(filepath.Join(outRoot, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrOutputLocked, outRoot)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("release output lock", "error", err)
		}
	}()

	log.Info("probing input", "input", cfg.InputMP4)
	total, windows, err := Plan(ctx, video, cfg.InputMP4, cfg.SegmentSeconds)
	if err != nil {
		return Result{}, err
	}
	log.Info("planned segments", "duration_sec", total, "segments", len(windows), "segment_sec", cfg.SegmentSeconds)

	runOutDir := buildRunOutDir(outRoot, cfg.InputMP4, time.Now().UTC())
	log.Info("output run dir", "dir", runOutDir)

	var onDone func(types.ManifestSegment)
	if cfg.Progress != nil && len(windows) > 0 {
		bar := progressbar.NewOptions(len(windows),
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("segments"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		onDone = func(types.ManifestSegment) { _ = bar.Add(1) }
	}

	uc := usecase.New(usecase.Deps{Video: video, ASR: asr, Log: log})
	res, err := uc.Run(ctx, usecase.Input{
		InputMP4:      cfg.InputMP4,
		Windows:       windows,
		Limits:        cfg.Limits,
		Formats:       cfg.Formats,
		Style:         cfg.Style,
		BurnSubtitles: cfg.BurnSubtitles,
		FontsDir:      cfg.FontsDir,
		OutDir:        runOutDir,
		Workers:       cfg.Workers,
		OnSegmentDone: onDone,
	})
	if err != nil {
		return Result{RunDir: runOutDir}, err
	}

	m := types.Manifest{
		RunID:      runID,
		Input:      cfg.InputMP4,
		DurationS:  total,
		SegmentLen: cfg.SegmentSeconds,
		Segments:   res.Segments,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return Result{}, err
	}
	log.Info("manifest written", "segments", len(m.Segments), "path", manifestPath)
	return Result{RunDir: runOutDir, Manifest: m}, nil
}

// Plan probes the input duration and splits it into windows of segSec.
func Plan(ctx context.Context, video ports.VideoTool, input string, segSec int) (float64, []types.SegmentWindow, error) {
	d, err := video.ProbeDuration(ctx, input)
	if err != nil {
		return 0, nil, err
	}
	total := d.Seconds()
	windows, err := segments.Plan(total, segSec)
	if err != nil {
		return 0, nil, err
	}
	return total, windows, nil
}

// NewVideoTool builds the ffmpeg adapter described by cfg.
func NewVideoTool(cfg Config) ports.VideoTool {
	return cfg.videoTool(cfg.Log)
}

func (c Config) videoTool(log *slog.Logger) ports.VideoTool {
	if c.Video != nil {
		return c.Video
	}
	opts := []ffmpeg.Option{ffmpeg.WithCanvas(c.Style.CanvasWidth, c.Style.CanvasHeight)}
	if c.Preset != "" {
		opts = append(opts, ffmpeg.WithEncoder(c.Preset, c.CRF))
	}
	if log != nil {
		opts = append(opts, ffmpeg.WithLogger(log))
	}
	return ffmpeg.New(c.FFmpegPath, c.FFprobePath, opts...)
}

func (c Config) recognizer(log *slog.Logger) ports.ASR {
	if c.ASR != nil {
		return c.ASR
	}
	if c.Engine == config.EngineWhisperCpp {
		return whispercpp.New(c.WhisperBin, c.WhisperModel, c.Language)
	}
	return vosk.New(c.VoskURL, vosk.WithTimeout(c.RecognizerTimeout), vosk.WithLogger(log))
}

func buildRunOutDir(outRoot, inputMP4 string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputMP4), filepath.Ext(inputMP4))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputMP4, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.ASR = (*vosk.Adapter)(nil)
