package config

const (
	defaultLogDir                  = "~/.local/share/voicecheck/logs"
	defaultExportDir               = "~/Documents/VoiceValidator/results"
	defaultStateDir                = "~/.local/share/voicecheck"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogRetentionDays        = 30
	defaultInterpreter             = "python"
	defaultEngineScriptName        = "RecognizeAndCompare.py"
	defaultEngineName              = "google"
	defaultWhisperModel            = "base"
	defaultCodecBinary             = "ffmpeg"
	defaultDrainTimeoutSeconds     = 2
	defaultCancelGraceSeconds      = 5
	defaultPreflightTimeoutSeconds = 10
	defaultScriptColumn            = "context"
	defaultScriptDelimiter         = ","
	defaultFallbackEncoding        = "windows-31j"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
			StateDir:  defaultStateDir,
		},
		Engine: Engine{
			Interpreter:             defaultInterpreter,
			Name:                    defaultEngineName,
			WhisperModel:            defaultWhisperModel,
			CodecBinary:             defaultCodecBinary,
			DrainTimeoutSeconds:     defaultDrainTimeoutSeconds,
			CancelGraceSeconds:      defaultCancelGraceSeconds,
			PreflightTimeoutSeconds: defaultPreflightTimeoutSeconds,
		},
		Script: Script{
			Column:           defaultScriptColumn,
			Delimiter:        defaultScriptDelimiter,
			FallbackEncoding: defaultFallbackEncoding,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
