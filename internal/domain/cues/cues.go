// Package cues groups recognized words into subtitle cues.
package cues

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/shortsplit/internal/domain"
	"github.com/forPelevin/shortsplit/internal/types"
)

// Limits bounds a single cue. A new cue starts when the silence before the
// next word is longer than MaxGap seconds, or when appending the word would
// make the text longer than MaxChars characters.
type Limits struct {
	MaxChars int
	MaxGap   float64
}

// DefaultLimits are tuned for one or two lines on a vertical 1080px canvas.
func DefaultLimits() Limits {
	return Limits{MaxChars: 60, MaxGap: 0.8}
}

func (l Limits) Validate() error {
	if l.MaxChars <= 0 {
		return fmt.Errorf("%w: max chars must be > 0, got %d", domain.ErrInvalidConfiguration, l.MaxChars)
	}
	if math.IsNaN(l.MaxGap) || math.IsInf(l.MaxGap, 0) || l.MaxGap < 0 {
		return fmt.Errorf("%w: max gap must be >= 0, got %v", domain.ErrInvalidConfiguration, l.MaxGap)
	}
	return nil
}

// Build merges words left to right into cues. Words are taken in the order
// given; out-of-order input is not corrected.
func Build(words []types.Word, lim Limits) ([]types.Cue, error) {
	if err := lim.Validate(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return []types.Cue{}, nil
	}

	out := make([]types.Cue, 0, len(words)/4+1)
	cur := types.Cue{Start: words[0].Start, End: words[0].End, Text: words[0].Text}
	for _, w := range words[1:] {
		gap := w.Start - cur.End
		next := strings.TrimSpace(cur.Text + " " + w.Text)
		// Equality stays in the current cue.
		if gap > lim.MaxGap || utf8.RuneCountInString(next) > lim.MaxChars {
			out = append(out, cur)
			cur = types.Cue{Start: w.Start, End: w.End, Text: w.Text}
			continue
		}
		cur.Text = next
		cur.End = w.End
	}
	return append(out, cur), nil
}
