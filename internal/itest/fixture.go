//go:build integration

package itest

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

// makeVideo writes a black 1280x720 MP4 of the given length. With speechWAV
// empty the audio track is a sine tone.
func makeVideo(t *testing.T, dir string, seconds int, speechWAV string) string {
	t.Helper()
	out := filepath.Join(dir, "input.mp4")
	d := strconv.Itoa(seconds)
	args := []string{"-y", "-f", "lavfi", "-i", "color=c=black:s=1280x720:d=" + d}
	if speechWAV == "" {
		args = append(args, "-f", "lavfi", "-i", "sine=frequency=440:duration="+d)
	} else {
		args = append(args, "-i", speechWAV, "-af", "apad")
	}
	args = append(args, "-t", d, "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac", out)
	if b, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
	return out
}
