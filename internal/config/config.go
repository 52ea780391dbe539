package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Dataset contains configuration for the FaceForensics++ tree layout.
type Dataset struct {
	Compression string `toml:"compression"`
}

// Media contains configuration for ffmpeg-based frame extraction and muxing.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	FPS           int    `toml:"fps"`
	FrameSize     int    `toml:"frame_size"`
}

// Landmarks contains configuration for the dlib landmark detector.
type Landmarks struct {
	ModelsDir string `toml:"models_dir"`
}

// GANnotation contains configuration for the reenactment generator tool.
type GANnotation struct {
	Command string `toml:"command"`
	Weights string `toml:"weights"`
}

// Classifier contains configuration for transfer evaluation scoring.
type Classifier struct {
	ScorerCommand string  `toml:"scorer_command"`
	BatchSize     int     `toml:"batch_size"`
	GPUFraction   float64 `toml:"gpu_fraction"`
}

// Preflight contains thresholds for pre-run environment checks.
type Preflight struct {
	MinFreeGiB int `toml:"min_free_gib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for fakebench.
//
// Configuration sections by subsystem:
//   - Paths: state directory (run ledger, locks) and log directory
//   - Dataset: FaceForensics++ compression level used for path derivation
//   - Media: ffmpeg/ffprobe binaries, frame rate, and output frame size
//   - Landmarks: dlib model directory for face landmark detection
//   - GANnotation: reenactment generator command and weights
//   - Classifier: scorer command plus evaluation batch size and GPU fraction
//   - Preflight: free-space floor for pre-run checks
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Dataset     Dataset     `toml:"dataset"`
	Media       Media       `toml:"media"`
	Landmarks   Landmarks   `toml:"landmarks"`
	GANnotation GANnotation `toml:"gannotation"`
	Classifier  Classifier  `toml:"classifier"`
	Preflight   Preflight   `toml:"preflight"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fakebench/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/fakebench/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fakebench.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunLedgerPath returns the SQLite database location for the run ledger.
func (c *Config) RunLedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// ResolvePath reports which configuration file the loader would use for the
// given override, and whether a file currently exists there.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "fakebench")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/fakebench"
	}
	return filepath.Join(home, ".local", "state", "fakebench")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
