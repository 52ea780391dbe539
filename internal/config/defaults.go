package config

const (
	defaultLogDir             = "~/.local/share/fakebench/logs"
	defaultCompression        = "c0"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultFPS                = 30
	defaultFrameSize          = 128
	defaultModelsDir          = "~/.local/share/fakebench/models"
	defaultGANnotationCommand = "gannotation"
	defaultScorerCommand      = "fakebench-score"
	defaultBatchSize          = 16
	defaultGPUFraction        = 1.0
	defaultMinFreeGiB         = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		Dataset: Dataset{
			Compression: defaultCompression,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			FPS:           defaultFPS,
			FrameSize:     defaultFrameSize,
		},
		Landmarks: Landmarks{
			ModelsDir: defaultModelsDir,
		},
		GANnotation: GANnotation{
			Command: defaultGANnotationCommand,
		},
		Classifier: Classifier{
			ScorerCommand: defaultScorerCommand,
			BatchSize:     defaultBatchSize,
			GPUFraction:   defaultGPUFraction,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
