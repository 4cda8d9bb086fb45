package types

// Word is a single recognized word with timings in seconds relative to the
// start of the audio it was recognized from.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"word"`
}

// Chunk is one utterance as emitted by a recognizer.
type Chunk struct {
	Text  string `json:"text"`
	Words []Word `json:"result,omitempty"`
}

type Transcript struct {
	Chunks []Chunk `json:"chunks"`
}

// Words flattens all chunks into one ordered sequence. Order is preserved
// as emitted; nothing is re-sorted.
func (t Transcript) Words() []Word {
	n := 0
	for _, c := range t.Chunks {
		n += len(c.Words)
	}
	out := make([]Word, 0, n)
	for _, c := range t.Chunks {
		out = append(out, c.Words...)
	}
	return out
}

type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SegmentWindow is the nominal [Start, Start+Length) slice of the source in
// whole seconds.
type SegmentWindow struct {
	Index  int `json:"index"`
	Start  int `json:"start_sec"`
	Length int `json:"length_sec"`
}

// End returns the nominal end of the window. It may exceed the media
// duration for the last window.
func (w SegmentWindow) End() int { return w.Start + w.Length }

type Manifest struct {
	RunID      string            `json:"run_id"`
	Input      string            `json:"input"`
	DurationS  float64           `json:"duration_sec"`
	SegmentLen int               `json:"segment_sec"`
	Segments   []ManifestSegment `json:"segments"`
}

type ManifestSegment struct {
	Index     int               `json:"index"`
	StartSec  int               `json:"start_sec"`
	EndSec    int               `json:"end_sec"`
	Words     int               `json:"words"`
	Cues      int               `json:"cues"`
	Segment   string            `json:"segment"`
	Audio     string            `json:"audio"`
	Subtitles map[string]string `json:"subtitles,omitempty"`
	File      string            `json:"file"`
	Burned    bool              `json:"burned"`
}
