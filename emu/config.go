package emu

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/kirsle/configdir"

	"pica/emu/log"
	"pica/hw/video"
)

type Config struct {
	Video   VideoConfig   `toml:"video"`
	General GeneralConfig `toml:"general"`
}

type GeneralConfig struct {
	// FCRAMSize is the size of the main memory, in MiB.
	FCRAMSize uint32 `toml:"fcram_size"`
	// MaxTraceData caps the bytes dumped per memory access in traces.
	MaxTraceData int `toml:"max_trace_data"`
}

type VideoConfig struct {
	AsyncGPU bool           `toml:"async_gpu"`
	HWShader bool           `toml:"hw_shader"`
	Timing   video.Policies `toml:"timing"`
}

// Options returns the video core options for this config.
func (vcfg VideoConfig) Options() video.Options {
	return video.Options{
		AsyncGPU: vcfg.AsyncGPU,
		HWShader: vcfg.HWShader,
		Timing:   vcfg.Timing,
	}
}

const maxFCRAMSize = 256

// Check fixes out of range values, falling back to their default.
func (cfg *Config) Check() {
	if cfg.General.FCRAMSize == 0 || cfg.General.FCRAMSize > maxFCRAMSize {
		log.ModEmu.Warnf("Invalid fcram_size %d, fallback to %d", cfg.General.FCRAMSize, DefaultConfig.General.FCRAMSize)
		cfg.General.FCRAMSize = DefaultConfig.General.FCRAMSize
	}
	if cfg.General.MaxTraceData < 0 {
		cfg.General.MaxTraceData = 0
	}
}

var DefaultConfig = Config{
	Video: VideoConfig{
		AsyncGPU: false,
		HWShader: true,
		Timing:   video.DefaultPolicies(),
	},
	General: GeneralConfig{
		FCRAMSize:    128,
		MaxTraceData: 64,
	},
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("pica")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfig decodes the config at path, over the default config so that
// missing keys keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig, errors.Wrap(err, "load config")
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the pica config directory,
// or provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.ModEmu.Warnf("%v, using defaults", err)
		}
		return DefaultConfig
	}
	return cfg
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, buf, 0644)
}

// ConfigPath is the path of the config file in the pica config directory.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}
