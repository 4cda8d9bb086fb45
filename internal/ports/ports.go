package ports

import (
	"context"
	"time"

	"github.com/forPelevin/shortsplit/internal/types"
)

type VideoTool interface {
	ProbeDuration(ctx context.Context, in string) (time.Duration, error)
	// ExtractSegment copies [start, start+length) of in to out without
	// re-encoding. The cut stops at the end of the media.
	ExtractSegment(ctx context.Context, in string, start, length time.Duration, out string) error
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	// RenderVertical letterboxes in onto the vertical canvas and burns
	// burnASS when it is non-empty.
	RenderVertical(ctx context.Context, in, burnASS, fontsDir, out string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, workDir string) (types.Transcript, error)
}
