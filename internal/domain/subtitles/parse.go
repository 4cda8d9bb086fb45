package subtitles

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/forPelevin/shortsplit/internal/domain"
	"github.com/forPelevin/shortsplit/internal/types"
)

// Parse reads a rendered document back into cues. Times come back at the
// precision of the format: milliseconds for SRT, centiseconds for ASS.
// Multi-line cue text is joined with "\n".
func Parse(f Format, doc string) ([]types.Cue, error) {
	var (
		st  *astisub.Subtitles
		err error
	)
	switch f {
	case FormatSRT:
		st, err = astisub.ReadFromSRT(strings.NewReader(doc))
	case FormatASS:
		st, err = astisub.ReadFromSSA(strings.NewReader(doc))
	default:
		return nil, fmt.Errorf("%w: unknown subtitle format %q", domain.ErrInvalidConfiguration, string(f))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}

	out := make([]types.Cue, 0, len(st.Items))
	for _, it := range st.Items {
		lines := make([]string, 0, len(it.Lines))
		for _, l := range it.Lines {
			lines = append(lines, l.String())
		}
		out = append(out, types.Cue{
			Start: it.StartAt.Seconds(),
			End:   it.EndAt.Seconds(),
			Text:  strings.Join(lines, "\n"),
		})
	}
	return out, nil
}

// Verify re-reads doc and checks that it holds exactly cues: same count,
// times equal to the cue times rounded to the format's unit, same words.
func Verify(f Format, doc string, cues []types.Cue) error {
	got, err := Parse(f, doc)
	if err != nil {
		return err
	}
	if len(got) != len(cues) {
		return fmt.Errorf("%s: read back %d cues, rendered %d", f, len(got), len(cues))
	}

	unit := time.Millisecond
	if f == FormatASS {
		unit = 10 * time.Millisecond
	}
	var errs []string
	for i, c := range cues {
		g := got[i]
		if want, have := quantize(c.Start, unit), quantize(g.Start, unit); want != have {
			errs = append(errs, fmt.Sprintf("cue %d: start %s, read back %s", i+1, want, have))
		}
		if want, have := quantize(c.End, unit), quantize(g.End, unit); want != have {
			errs = append(errs, fmt.Sprintf("cue %d: end %s, read back %s", i+1, want, have))
		}
		want := c.Text
		if f == FormatASS {
			want = assBreaks.Replace(sanitizeASS(want))
		}
		if words(want) != words(g.Text) {
			errs = append(errs, fmt.Sprintf("cue %d: text %q, read back %q", i+1, c.Text, g.Text))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s round trip:\n%s", f, strings.Join(errs, "\n"))
	}
	return nil
}

// assBreaks lists the sequences a reader treats as line breaks.
var assBreaks = strings.NewReplacer(`\N`, " ", `\n`, " ")

// quantize rounds t seconds half away from zero to a multiple of unit, the
// same rounding the timecode formatters apply.
func quantize(t float64, unit time.Duration) time.Duration {
	return time.Duration(math.Round(t*float64(time.Second/unit))) * unit
}

func words(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
