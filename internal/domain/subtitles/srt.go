package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/shortsplit/internal/domain/timecode"
	"github.com/forPelevin/shortsplit/internal/types"
)

// RenderSRT renders numbered SubRip blocks. No cues renders as "".
func RenderSRT(cues []types.Cue) (string, error) {
	lines := make([]string, 0, len(cues)*4)
	for i, c := range cues {
		start, err := timecode.FormatSRT(c.Start)
		if err != nil {
			return "", fmt.Errorf("cue %d start: %w", i+1, err)
		}
		end, err := timecode.FormatSRT(c.End)
		if err != nil {
			return "", fmt.Errorf("cue %d end: %w", i+1, err)
		}
		lines = append(lines,
			strconv.Itoa(i+1),
			start+" --> "+end,
			c.Text,
			"",
		)
	}
	return strings.Join(lines, "\n"), nil
}
