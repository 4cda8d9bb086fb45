package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/shortsplit/internal/domain/cues"
	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
	"github.com/forPelevin/shortsplit/internal/ports"
	"github.com/forPelevin/shortsplit/internal/types"
)

// Run directory layout.
const (
	SegmentsDir = "segments"
	AudioDir    = "wav"
	SubsDir     = "subs"
	FinalDir    = "final"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.ASR
	Log   *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = slog.New(slog.DiscardHandler)
	}
	return Usecase{d: d}
}

type Input struct {
	InputMP4      string
	Windows       []types.SegmentWindow
	Limits        cues.Limits
	Formats       []subtitles.Format
	Style         subtitles.Style
	BurnSubtitles bool
	FontsDir      string
	OutDir        string
	Workers       int
	// OnSegmentDone is called once per finished segment, possibly from
	// several goroutines at once.
	OnSegmentDone func(types.ManifestSegment)
}

type Result struct {
	Segments []types.ManifestSegment
}

// Run processes every window. Segments run on up to Workers goroutines;
// the first failure cancels the rest and is returned.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	if in.BurnSubtitles && !slices.Contains(in.Formats, subtitles.FormatASS) {
		return Result{}, fmt.Errorf("burning subtitles requires the %q format", subtitles.FormatASS)
	}
	for _, d := range []string{SegmentsDir, AudioDir, SubsDir, FinalDir} {
		if err := os.MkdirAll(filepath.Join(in.OutDir, d), 0o755); err != nil {
			return Result{}, err
		}
	}

	workers := in.Workers
	if workers <= 0 {
		workers = 1
	}
	out := make([]types.ManifestSegment, len(in.Windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range in.Windows {
		g.Go(func() error {
			seg, err := u.processSegment(gctx, in, w)
			if err != nil {
				return fmt.Errorf("segment %d/%d: %w", w.Index+1, len(in.Windows), err)
			}
			out[i] = seg
			if in.OnSegmentDone != nil {
				in.OnSegmentDone(seg)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Segments: out}, nil
}

func (u Usecase) processSegment(ctx context.Context, in Input, w types.SegmentWindow) (types.ManifestSegment, error) {
	log := u.d.Log.With("segment", w.Index, "start_sec", w.Start, "end_sec", w.End())
	started := time.Now()
	name := ClipName(w)

	segPath := filepath.Join(in.OutDir, SegmentsDir, name+".mp4")
	wavPath := filepath.Join(in.OutDir, AudioDir, name+".wav")

	log.Info("cutting segment")
	if err := u.d.Video.ExtractSegment(ctx, in.InputMP4, sec(w.Start), sec(w.Length), segPath); err != nil {
		return types.ManifestSegment{}, err
	}
	if err := u.d.Video.ExtractAudioMono16k(ctx, segPath, wavPath); err != nil {
		return types.ManifestSegment{}, err
	}

	log.Info("transcribing")
	tr, err := u.d.ASR.Transcribe(ctx, wavPath, filepath.Join(in.OutDir, AudioDir))
	if err != nil {
		return types.ManifestSegment{}, err
	}
	if err := writeJSON(filepath.Join(in.OutDir, AudioDir, name+".json"), tr); err != nil {
		return types.ManifestSegment{}, err
	}

	words := tr.Words()
	cs, err := cues.Build(words, in.Limits)
	if err != nil {
		return types.ManifestSegment{}, err
	}

	seg := types.ManifestSegment{
		Index:     w.Index,
		StartSec:  w.Start,
		EndSec:    w.End(),
		Words:     len(words),
		Cues:      len(cs),
		Segment:   rel(SegmentsDir, name+".mp4"),
		Audio:     rel(AudioDir, name+".wav"),
		Subtitles: make(map[string]string, len(in.Formats)),
	}
	var assPath string
	for _, f := range in.Formats {
		text, err := subtitles.Render(f, cs, in.Style)
		if err != nil {
			return types.ManifestSegment{}, err
		}
		p := filepath.Join(in.OutDir, SubsDir, name+f.Ext())
		if err := writeFile(p, []byte(text)); err != nil {
			return types.ManifestSegment{}, err
		}
		seg.Subtitles[string(f)] = rel(SubsDir, name+f.Ext())
		if f == subtitles.FormatASS {
			assPath = p
		}
	}

	finalName := name + ".mp4"
	burn := ""
	if in.BurnSubtitles {
		finalName = name + "_sub.mp4"
		burn = assPath
	}
	log.Info("rendering vertical", "burn", in.BurnSubtitles, "cues", len(cs))
	if err := u.d.Video.RenderVertical(ctx, segPath, burn, in.FontsDir, filepath.Join(in.OutDir, FinalDir, finalName)); err != nil {
		return types.ManifestSegment{}, err
	}
	seg.File = rel(FinalDir, finalName)
	seg.Burned = in.BurnSubtitles

	log.Info("segment done", "words", len(words), "cues", len(cs), "elapsed", time.Since(started).Round(time.Millisecond))
	return seg, nil
}

// ClipName is the base name shared by every artifact of a window.
func ClipName(w types.SegmentWindow) string {
	return fmt.Sprintf("clip_%02d", w.Index)
}

func sec(n int) time.Duration { return time.Duration(n) * time.Second }

func rel(parts ...string) string { return filepath.ToSlash(filepath.Join(parts...)) }

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, b)
}

func writeFile(path string, b []byte) error {
	return os.WriteFile(path, b, 0o644)
}
