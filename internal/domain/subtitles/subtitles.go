// Package subtitles renders cues as SubRip (.srt) or Advanced SubStation
// Alpha (.ass) text. Rendering is pure: the same cues always produce the
// same bytes.
package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/shortsplit/internal/domain"
	"github.com/forPelevin/shortsplit/internal/types"
)

type Format string

const (
	FormatSRT Format = "srt"
	FormatASS Format = "ass"
)

// Ext is the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSRT:
		return FormatSRT, nil
	case FormatASS:
		return FormatASS, nil
	}
	return "", fmt.Errorf("%w: unknown subtitle format %q (want srt or ass)", domain.ErrInvalidConfiguration, s)
}

// Style configures the ASS output. SRT ignores it.
type Style struct {
	FontName     string
	FontSize     int
	PosY         int
	FadeInMS     int
	FadeOutMS    int
	CanvasWidth  int
	CanvasHeight int
}

// DefaultStyle targets a 1080x1920 canvas with captions a bit below center.
func DefaultStyle() Style {
	return Style{
		FontName:     "Oswald",
		FontSize:     100,
		PosY:         1500,
		FadeInMS:     200,
		FadeOutMS:    200,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
	}
}

func (s Style) Validate() error {
	switch {
	case strings.TrimSpace(s.FontName) == "":
		return fmt.Errorf("%w: font name is empty", domain.ErrInvalidConfiguration)
	case strings.ContainsAny(s.FontName, ",\n"):
		return fmt.Errorf("%w: font name %q must not contain commas or newlines", domain.ErrInvalidConfiguration, s.FontName)
	case s.FontSize <= 0:
		return fmt.Errorf("%w: font size must be > 0", domain.ErrInvalidConfiguration)
	case s.CanvasWidth <= 0 || s.CanvasHeight <= 0:
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", domain.ErrInvalidConfiguration, s.CanvasWidth, s.CanvasHeight)
	case s.PosY < 0:
		return fmt.Errorf("%w: vertical position must be >= 0", domain.ErrInvalidConfiguration)
	case s.FadeInMS < 0 || s.FadeOutMS < 0:
		return fmt.Errorf("%w: fade durations must be >= 0", domain.ErrInvalidConfiguration)
	}
	return nil
}

// Render renders cues in the given format.
func Render(f Format, cues []types.Cue, st Style) (string, error) {
	switch f {
	case FormatSRT:
		return RenderSRT(cues)
	case FormatASS:
		return RenderASS(cues, st)
	}
	return "", fmt.Errorf("%w: unknown subtitle format %q", domain.ErrInvalidConfiguration, string(f))
}
