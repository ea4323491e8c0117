package config

const (
	defaultCodecBinary      = "flac"
	defaultCompressionLevel = 8
	maxCompressionLevel     = 8
	defaultTrashDirName     = "#recycle"
	defaultTrashCacheSize   = 1024
	defaultConcurrency      = 4
	defaultLogFile          = "~/flacify.log"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

var defaultVolumeRoots = []string{"/volume1", "/volume2"}

// Default returns a Config populated with repository defaults. Runs are
// dry-runs unless explicitly switched off. The codec binary, volume roots, and
// log file stay empty so normalize can apply environment fallbacks before the
// compiled-in values.
func Default() Config {
	return Config{
		Codec: Codec{
			CompressionLevel: defaultCompressionLevel,
		},
		Trash: Trash{
			DirName:   defaultTrashDirName,
			CacheSize: defaultTrashCacheSize,
		},
		Workflow: Workflow{
			DryRun:      true,
			Concurrency: defaultConcurrency,
		},
		Logging: Logging{
			Format:  defaultLogFormat,
			Level:   defaultLogLevel,
			Console: true,
		},
	}
}
