// Package config loads shortsplit settings from TOML or YAML files and the
// environment.
//
// Settings are grouped by concern:
//   - Paths: output root, asset base directory and external tool binaries
//   - Segments: fixed segment length and per-run worker count
//   - Cues: cue grouping limits
//   - Subtitles: output formats and ASS style
//   - Recognizer: speech-recognition engine selection
//   - Render: vertical canvas, encoder settings and subtitle burning
//   - Logging: log level and format
//
// A Config is a plain value. Nothing in this package keeps process-wide
// state; callers thread the loaded value into the pipeline.
package config
