package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/forPelevin/shortsplit/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

// output mirrors the subset of whisper.cpp's -oj file we read.
type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp with one word per segment (-ml 1 -sow) so
// every JSON segment maps to one word.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, workDir string) (types.Transcript, error) {
	name := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	outPrefix := filepath.Join(workDir, name+".whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-ml", "1",
		"-sow",
		"-np",
	}
	if a.language != "" {
		args = append(args, "-l", a.language)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return decode(jb)
}

func decode(b []byte) (types.Transcript, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("decode whisper.cpp json: %w", err)
	}
	var (
		words []types.Word
		texts []string
	)
	for _, s := range out.Transcription {
		text := norm.NFC.String(strings.TrimSpace(s.Text))
		if text == "" {
			continue
		}
		words = append(words, types.Word{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
		texts = append(texts, text)
	}
	if len(words) == 0 {
		return types.Transcript{}, nil
	}
	return types.Transcript{Chunks: []types.Chunk{{Text: strings.Join(texts, " "), Words: words}}}, nil
}
