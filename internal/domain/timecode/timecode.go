// Package timecode converts fractional seconds to the two subtitle time
// encodings: SubRip's HH:MM:SS,mmm and ASS's H:MM:SS.cc.
package timecode

import (
	"fmt"
	"math"

	"github.com/forPelevin/shortsplit/internal/domain"
)

// FormatSRT renders t as HH:MM:SS,mmm. The hour field widens past two
// digits instead of wrapping.
func FormatSRT(t float64) (string, error) {
	ms, err := scaled(t, 1000)
	if err != nil {
		return "", err
	}
	h := ms / 3_600_000
	ms %= 3_600_000
	m := ms / 60_000
	ms %= 60_000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms), nil
}

// FormatASS renders t as H:MM:SS.cc with an unpadded hour field.
func FormatASS(t float64) (string, error) {
	cs, err := scaled(t, 100)
	if err != nil {
		return "", err
	}
	h := cs / 360_000
	cs %= 360_000
	m := cs / 6000
	cs %= 6000
	s := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs), nil
}

// scaled rounds t*unit half away from zero.
func scaled(t float64, unit float64) (int64, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidTimestamp, t)
	}
	v := math.Round(t * unit)
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v out of range", domain.ErrInvalidTimestamp, t)
	}
	return int64(v), nil
}
