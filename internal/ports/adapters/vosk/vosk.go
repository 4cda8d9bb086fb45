// Package vosk transcribes 16 kHz mono WAV files against a Vosk recognition
// server (github.com/alphacep/vosk-server) over its WebSocket protocol.
package vosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-audio/wav"
	"golang.org/x/text/unicode/norm"

	"github.com/forPelevin/shortsplit/internal/types"
)

const (
	defaultSampleRate  = 16000
	defaultChunkFrames = 4000
	// Final results for a long utterance easily exceed the 32 KiB default.
	readLimit = 4 << 20
)

type Adapter struct {
	url         string
	sampleRate  int
	chunkFrames int
	timeout     time.Duration
	log         *slog.Logger
}

type Option func(*Adapter)

// WithChunkFrames sets how many PCM frames are sent per message.
func WithChunkFrames(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.chunkFrames = n
		}
	}
}

// WithTimeout bounds a single Transcribe call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

func New(serverURL string, opts ...Option) *Adapter {
	a := &Adapter{
		url:         serverURL,
		sampleRate:  defaultSampleRate,
		chunkFrames: defaultChunkFrames,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// result is one server reply. Partial replies carry only "partial".
type result struct {
	Partial *string      `json:"partial"`
	Text    string       `json:"text"`
	Result  []types.Word `json:"result"`
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, _ string) (types.Transcript, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return types.Transcript{}, err
	}
	defer f.Close()

	pcm, err := a.openPCM(f)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("vosk: %s: %w", wavPath, err)
	}

	conn, _, err := websocket.Dial(ctx, a.url, nil)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("vosk: dial %s: %w", a.url, err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	cfg := fmt.Sprintf(`{"config":{"sample_rate":%d,"words":1}}`, a.sampleRate)
	if err := conn.Write(ctx, websocket.MessageText, []byte(cfg)); err != nil {
		return types.Transcript{}, fmt.Errorf("vosk: send config: %w", err)
	}

	var tr types.Transcript
	buf := make([]byte, a.chunkFrames*2)
	sent := 0
	for {
		n, rerr := io.ReadFull(pcm, buf)
		if n > 0 {
			if err := conn.Write(ctx, websocket.MessageBinary, buf[:n]); err != nil {
				return types.Transcript{}, fmt.Errorf("vosk: send audio: %w", err)
			}
			sent++
			if err := a.collect(ctx, conn, &tr); err != nil {
				return types.Transcript{}, err
			}
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return types.Transcript{}, fmt.Errorf("vosk: read pcm: %w", rerr)
		}
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"eof":1}`)); err != nil {
		return types.Transcript{}, fmt.Errorf("vosk: send eof: %w", err)
	}
	if err := a.collect(ctx, conn, &tr); err != nil {
		return types.Transcript{}, err
	}
	conn.Close(websocket.StatusNormalClosure, "")

	a.log.Debug("vosk transcribed", "wav", wavPath, "messages", sent, "chunks", len(tr.Chunks))
	return tr, nil
}

// openPCM checks the WAV header and positions the reader at the PCM data.
func (a *Adapter) openPCM(f io.ReadSeeker) (io.Reader, error) {
	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if d.WavAudioFormat != 1 || d.NumChans != 1 || d.BitDepth != 16 || int(d.SampleRate) != a.sampleRate {
		return nil, fmt.Errorf(
			"wav must be mono 16-bit PCM @%dHz, got format=%d channels=%d bits=%d rate=%d",
			a.sampleRate, d.WavAudioFormat, d.NumChans, d.BitDepth, d.SampleRate,
		)
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locate pcm data: %w", err)
	}
	if d.PCMChunk == nil {
		return strings.NewReader(""), nil
	}
	return d.PCMChunk, nil
}

// collect reads one server reply and keeps it unless it is a partial.
func (a *Adapter) collect(ctx context.Context, conn *websocket.Conn, tr *types.Transcript) error {
	_, b, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("vosk: read result: %w", err)
	}
	var r result
	if err := json.Unmarshal(b, &r); err != nil {
		return fmt.Errorf("vosk: decode result %q: %w", truncate(string(b), 200), err)
	}
	if r.Partial != nil {
		return nil
	}
	tr.Chunks = append(tr.Chunks, types.Chunk{Text: r.Text, Words: normalizeWords(r.Result)})
	return nil
}

func normalizeWords(ws []types.Word) []types.Word {
	for i := range ws {
		ws[i].Text = norm.NFC.String(strings.TrimSpace(ws[i].Text))
	}
	return ws
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
