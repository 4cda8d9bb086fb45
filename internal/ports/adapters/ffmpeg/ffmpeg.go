package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	width   int
	height  int
	preset  string
	crf     int
	log     *slog.Logger
}

type Option func(*Adapter)

// WithCanvas sets the output frame size of RenderVertical.
func WithCanvas(width, height int) Option {
	return func(a *Adapter) { a.width, a.height = width, height }
}

// WithEncoder sets the libx264 preset and CRF used by RenderVertical.
func WithEncoder(preset string, crf int) Option {
	return func(a *Adapter) { a.preset, a.crf = preset, crf }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

func New(ffmpegPath, ffprobePath string, opts ...Option) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	a := &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		width:   1080,
		height:  1920,
		preset:  "fast",
		crf:     23,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Adapter) ExtractSegment(ctx context.Context, in string, start, length time.Duration, out string) error {
	args := []string{
		"-hide_banner", "-y",
		"-ss", fmtSeconds(start),
		"-t", fmtSeconds(length),
		"-i", in,
		"-map", "0",
		"-c", "copy",
		"-reset_timestamps", "1",
		out,
	}
	return a.run(ctx, "ffmpeg extract segment", a.ffmpeg, args)
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	args := []string{
		"-hide_banner", "-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outWav,
	}
	return a.run(ctx, "ffmpeg extract audio", a.ffmpeg, args)
}

func (a *Adapter) RenderVertical(ctx context.Context, in, burnASS, fontsDir, out string) error {
	args := []string{
		"-hide_banner", "-y",
		"-i", in,
		"-vf", a.videoFilter(burnASS, fontsDir),
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", a.preset,
		"-crf", strconv.Itoa(a.crf),
		out,
	}
	return a.run(ctx, "ffmpeg render vertical", a.ffmpeg, args)
}

func (a *Adapter) videoFilter(burnASS, fontsDir string) string {
	w, h := a.width, a.height
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		w, h, w, h,
	)
	if burnASS == "" {
		return vf
	}
	vf += ",ass=" + escapeFilterPath(burnASS)
	if fontsDir != "" {
		vf += ":fontsdir=" + escapeFilterPath(fontsDir)
	}
	return vf
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if sec < 0 {
		return 0, fmt.Errorf("ffprobe duration: negative value %q", s)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) run(ctx context.Context, what, bin string, args []string) error {
	a.log.Debug("exec", "step", what, "bin", bin, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", what, err, string(b))
	}
	return nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// escapeFilterPath escapes a path for an ffmpeg filter option value. The
// value is unescaped twice, once as an option value split on ':' and once
// as part of the filtergraph split on ',' ';' and brackets, so the option
// level is escaped first and the graph level on top of it.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return graphEscaper.Replace(optionEscaper.Replace(p))
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `,`, `\,`, `;`, `\;`, `[`, `\[`, `]`, `\]`)
)
