package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forPelevin/shortsplit/internal/config"
	"github.com/forPelevin/shortsplit/internal/types"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(&out, &errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const voskLines = `{"partial": "hel"}
{"result": [{"conf": 1.0, "start": 0.1, "end": 0.7, "word": "hello"}, {"conf": 0.9, "start": 0.8, "end": 1.4, "word": "world"}], "text": "hello world"}
{"result": [{"conf": 1.0, "start": 3.0, "end": 3.5, "word": "again"}], "text": "again"}
{"text": ""}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCues_SRTFromJSONLines(t *testing.T) {
	p := writeTemp(t, "results.jsonl", voskLines)

	out, err := execute(t, "", "cues", p, "--verify")
	if err != nil {
		t.Fatalf("cues: %v", err)
	}
	want := "1\n00:00:00,100 --> 00:00:01,400\nhello world\n\n2\n00:00:03,000 --> 00:00:03,500\nagain\n"
	if out != want {
		t.Fatalf("output mismatch:\n%s", cmp.Diff(want, out))
	}
}

func TestCues_ASSFromStdin(t *testing.T) {
	out, err := execute(t, voskLines, "cues", "-", "--format", "ass", "--max-chars", "5", "--verify")
	if err != nil {
		t.Fatalf("cues: %v", err)
	}
	if !strings.HasPrefix(out, "[Script Info]") {
		t.Fatalf("missing ASS header:\n%s", out)
	}
	if got := strings.Count(out, "Dialogue:"); got != 3 {
		t.Fatalf("expected 3 dialogue lines with max-chars 5, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Dialogue: 0,0:00:00.10,0:00:00.70,Default,,0,0,0,,") {
		t.Fatalf("unexpected first dialogue:\n%s", out)
	}
}

func TestCues_EmptyInput(t *testing.T) {
	p := writeTemp(t, "empty.json", "")
	out, err := execute(t, "", "cues", p)
	if err != nil {
		t.Fatalf("cues: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty srt, got %q", out)
	}
}

func TestCues_InvalidLimits(t *testing.T) {
	p := writeTemp(t, "results.jsonl", voskLines)
	_, err := execute(t, "", "cues", p, "--max-chars", "0")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestDecodeResults(t *testing.T) {
	words := []types.Word{{Start: 1, End: 2, Text: "one"}}
	cases := map[string]string{
		"array":      `[{"text":"one","result":[{"start":1,"end":2,"word":"one"}]}]`,
		"lines":      `{"text":"one","result":[{"start":1,"end":2,"word":"one"}]}`,
		"transcript": `{"chunks":[{"text":"one","result":[{"start":1,"end":2,"word":"one"}]}]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			tr, err := decodeResults([]byte(in))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(words, tr.Words()); diff != "" {
				t.Fatalf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := decodeResults([]byte(`{"result": [`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestPlan_Duration(t *testing.T) {
	out, err := execute(t, "", "plan", "--duration", "150", "--segment", "60")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"00:02:00,000", "00:03:00,000", "3 segments, 150.000s total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestPlan_ZeroDuration(t *testing.T) {
	out, err := execute(t, "", "plan", "--duration", "0")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "0 segments") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPlan_HugeDurationRejected(t *testing.T) {
	_, err := execute(t, "", "plan", "--duration", "1e12", "--segment", "60")
	if err == nil || !strings.Contains(err.Error(), "limit is") {
		t.Fatalf("expected window limit error, got %v", err)
	}
}

func TestPlan_NeedsInput(t *testing.T) {
	if _, err := execute(t, "", "plan"); err == nil {
		t.Fatal("expected error")
	}
}

func TestConfigInit(t *testing.T) {
	out, err := execute(t, "", "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if out != config.Sample() {
		t.Fatal("stdout does not match the sample config")
	}

	p := filepath.Join(t.TempDir(), "shortsplit.toml")
	if _, err := execute(t, "", "config", "init", p); err != nil {
		t.Fatalf("config init %s: %v", p, err)
	}
	if _, err := execute(t, "", "config", "init", p); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, err := execute(t, "", "config", "init", p, "--force"); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}

	out, err = execute(t, "", "--config", p, "config", "check")
	if err != nil {
		t.Fatalf("sample config must validate: %v", err)
	}
	if !strings.Contains(out, "config ok") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigCheck_Invalid(t *testing.T) {
	p := writeTemp(t, "bad.toml", "[segments]\nlength_seconds = 0\n")
	_, err := execute(t, "", "--config", p, "config", "check")
	if err == nil || !strings.Contains(err.Error(), "segments.length_seconds") {
		t.Fatalf("expected segments error, got %v", err)
	}
}

func TestRun_MissingInput(t *testing.T) {
	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope.mp4"))
	if err == nil || !strings.Contains(err.Error(), "stat input") {
		t.Fatalf("expected stat error, got %v", err)
	}
}

func TestRun_FlagValidation(t *testing.T) {
	p := writeTemp(t, "in.mp4", "x")
	_, err := execute(t, "", "run", p, "--formats", "srt")
	if err == nil || !strings.Contains(err.Error(), "burn_subtitles") {
		t.Fatalf("expected burn/format conflict, got %v", err)
	}
}
