package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forPelevin/shortsplit/internal/domain/cues"
	"github.com/forPelevin/shortsplit/internal/domain/subtitles"
	"github.com/forPelevin/shortsplit/internal/types"
)

func newCuesCommand(root *rootOptions) *cobra.Command {
	var (
		format string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "cues <recognizer.json|->",
		Short: "Build subtitles from saved recognizer results",
		Long: "Reads Vosk results (one JSON object per line, a JSON array, or a saved\n" +
			"transcript) and prints the grouped cues as SRT or ASS.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := root.loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chars") {
				settings.Cues.MaxChars, _ = cmd.Flags().GetInt("max-chars")
			}
			if cmd.Flags().Changed("max-gap") {
				settings.Cues.MaxGapSeconds, _ = cmd.Flags().GetFloat64("max-gap")
			}
			f, err := subtitles.ParseFormat(format)
			if err != nil {
				return err
			}

			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			tr, err := decodeResults(b)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			cs, err := cues.Build(tr.Words(), settings.CueLimits())
			if err != nil {
				return err
			}
			text, err := subtitles.Render(f, cs, settings.Style())
			if err != nil {
				return err
			}
			if verify {
				if err := subtitles.Verify(f, text, cs); err != nil {
					return err
				}
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(subtitles.FormatSRT), "Output format: srt, ass")
	cmd.Flags().Int("max-chars", 0, "Max characters per cue")
	cmd.Flags().Float64("max-gap", 0, "Max silence in seconds inside one cue")
	cmd.Flags().BoolVar(&verify, "verify", false, "Read the rendered document back and check it against the cues")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// resultDoc matches both a Vosk result object and a saved transcript.
type resultDoc struct {
	Chunks []types.Chunk `json:"chunks"`
	types.Chunk
}

// decodeResults accepts a JSON array of results, a stream of result
// objects (JSON lines) or a transcript written by the run command.
func decodeResults(b []byte) (types.Transcript, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return types.Transcript{}, nil
	}
	if b[0] == '[' {
		var chunks []types.Chunk
		if err := json.Unmarshal(b, &chunks); err != nil {
			return types.Transcript{}, err
		}
		return types.Transcript{Chunks: chunks}, nil
	}

	var tr types.Transcript
	dec := json.NewDecoder(bytes.NewReader(b))
	for {
		var d resultDoc
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return tr, nil
		}
		if err != nil {
			return types.Transcript{}, err
		}
		if d.Chunks != nil {
			tr.Chunks = append(tr.Chunks, d.Chunks...)
			continue
		}
		if len(d.Words) > 0 {
			tr.Chunks = append(tr.Chunks, d.Chunk)
		}
	}
}
