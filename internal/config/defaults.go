package config

const (
	defaultOutputDir           = "/out"
	defaultCheckInterval       = 3600
	defaultImportCheckInterval = 60
	defaultLookbackDays        = 7
	defaultEngineName          = EngineFasterWhisper
	defaultEngineModel         = "base"
	defaultEngineDevice        = "cpu"
	defaultComputeType         = "default"
	defaultDownloadTimeout     = 300
	defaultDownloadAttempts    = 3
	defaultStagingGraceMinutes = 60
	defaultNotifyTimeout       = 10
	defaultLogLevel            = "info"
)

// Supported transcription engine names.
const (
	EngineWhisper       = "whisper"
	EngineFasterWhisper = "faster-whisper"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Feeds: Feeds{
			CheckInterval:       defaultCheckInterval,
			ImportCheckInterval: defaultImportCheckInterval,
			LookbackDays:        defaultLookbackDays,
		},
		Engine: Engine{
			Name:        defaultEngineName,
			Model:       defaultEngineModel,
			Device:      defaultEngineDevice,
			ComputeType: defaultComputeType,
		},
		Processing: Processing{
			DownloadTimeout:     defaultDownloadTimeout,
			DownloadAttempts:    defaultDownloadAttempts,
			StagingGraceMinutes: defaultStagingGraceMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
