package config

const (
	defaultOutDir         = "out"
	defaultSegmentSeconds = 60
	defaultWorkers        = 1
	defaultMaxChars       = 60
	defaultMaxGapSeconds  = 0.8
	defaultFont           = "Oswald"
	defaultFontsDir       = "assets/fonts"
	defaultFontSize       = 100
	defaultPosY           = 1500
	defaultFadeMS         = 200
	defaultEngine         = EngineVosk
	defaultVoskURL        = "ws://127.0.0.1:2700"
	defaultWhisperBin     = "whisper-cli"
	defaultWhisperModel   = "models/ggml-base.bin"
	defaultLanguage       = "ru"
	defaultTimeoutSeconds = 600
	defaultWidth          = 1080
	defaultHeight         = 1920
	defaultPreset         = "fast"
	defaultCRF            = 23
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

const (
	EngineVosk       = "vosk"
	EngineWhisperCpp = "whispercpp"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir:  defaultOutDir,
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Segments: Segments{
			LengthSeconds: defaultSegmentSeconds,
			Workers:       defaultWorkers,
		},
		Cues: Cues{
			MaxChars:      defaultMaxChars,
			MaxGapSeconds: defaultMaxGapSeconds,
		},
		Subtitles: Subtitles{
			Formats:   []string{"ass", "srt"},
			Font:      defaultFont,
			FontsDir:  defaultFontsDir,
			FontSize:  defaultFontSize,
			PosY:      defaultPosY,
			FadeInMS:  defaultFadeMS,
			FadeOutMS: defaultFadeMS,
		},
		Recognizer: Recognizer{
			Engine:         defaultEngine,
			VoskURL:        defaultVoskURL,
			WhisperBin:     defaultWhisperBin,
			WhisperModel:   defaultWhisperModel,
			Language:       defaultLanguage,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Render: Render{
			BurnSubtitles: true,
			Width:         defaultWidth,
			Height:        defaultHeight,
			Preset:        defaultPreset,
			CRF:           defaultCRF,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
