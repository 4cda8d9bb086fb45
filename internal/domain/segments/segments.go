// Package segments plans the fixed-length windows a source is cut into.
package segments

import (
	"fmt"
	"math"

	"github.com/forPelevin/shortsplit/internal/domain"
	"github.com/forPelevin/shortsplit/internal/types"
)

// MaxWindows caps the number of windows one source may be cut into.
const MaxWindows = 1 << 20

// Plan returns ceil(total/length) windows of length seconds each. The last
// window is not clamped to total; the cutter stops at the end of the media.
func Plan(total float64, length int) ([]types.SegmentWindow, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: segment length must be > 0, got %d", domain.ErrInvalidConfiguration, length)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return nil, fmt.Errorf("%w: duration must be a finite value >= 0, got %v", domain.ErrInvalidConfiguration, total)
	}
	windows := math.Ceil(total / float64(length))
	if windows > MaxWindows {
		return nil, fmt.Errorf("%w: %v seconds at %d s per segment needs %v windows, limit is %d",
			domain.ErrInvalidConfiguration, total, length, windows, MaxWindows)
	}
	n := int(windows)
	if n > 0 && length > math.MaxInt/n {
		return nil, fmt.Errorf("%w: segment length %d overflows window offsets", domain.ErrInvalidConfiguration, length)
	}
	out := make([]types.SegmentWindow, n)
	for i := range out {
		out[i] = types.SegmentWindow{Index: i, Start: i * length, Length: length}
	}
	return out, nil
}
