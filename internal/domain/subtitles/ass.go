package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/shortsplit/internal/domain/timecode"
	"github.com/forPelevin/shortsplit/internal/types"
)

const (
	assStyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	assEventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
	assStyleName   = "Default"
)

// RenderASS renders the script header followed by one Dialogue line per
// cue. No cues renders the header alone.
func RenderASS(cues []types.Cue, st Style) (string, error) {
	if err := st.Validate(); err != nil {
		return "", err
	}
	lines := make([]string, 0, len(cues))
	x := st.CanvasWidth / 2
	for i, c := range cues {
		start, err := timecode.FormatASS(c.Start)
		if err != nil {
			return "", fmt.Errorf("cue %d start: %w", i+1, err)
		}
		end, err := timecode.FormatASS(c.End)
		if err != nil {
			return "", fmt.Errorf("cue %d end: %w", i+1, err)
		}
		lines = append(lines, fmt.Sprintf(
			"Dialogue: 0,%s,%s,%s,,0,0,0,,{\\pos(%d,%d)\\fad(%d,%d)}%s",
			start, end, assStyleName, x, st.PosY, st.FadeInMS, st.FadeOutMS, sanitizeASS(c.Text),
		))
	}
	return assHeader(st) + strings.Join(lines, "\n"), nil
}

func assHeader(st Style) string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: Auto-generated subtitles\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", st.CanvasWidth)
	fmt.Fprintf(&b, "PlayResY: %d\n", st.CanvasHeight)
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString(assStyleFormat + "\n")
	b.WriteString(assStyleLine(st) + "\n")
	b.WriteString("\n[Events]\n")
	b.WriteString(assEventFormat + "\n")
	return b.String()
}

// assStyleLine emits the 23 fields named by assStyleFormat: white text,
// black outline, centered alignment (5) since position comes from \pos.
func assStyleLine(st Style) string {
	fields := []string{
		assStyleName,
		st.FontName,
		fmt.Sprint(st.FontSize),
		"&H00FFFFFF", "&H000000FF", "&H00000000", "&H00000000",
		"0", "0", "0", "0",
		"100", "100", "0", "0",
		"1", "2", "0", "5",
		"0", "0", "0", "1",
	}
	return "Style: " + strings.Join(fields, ",")
}

// sanitizeASS turns override braces into parentheses and newlines into \N
// so a cue stays one Dialogue line without tags of its own.
func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", "\\N")
	return strings.TrimSpace(s)
}
