package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileName is the name of the configuration file looked up in the config directory.
const FileName = "doodle.cfg.json"

// Config is the typed view of the loaded settings.
type Config struct {
	LogLevel string        `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string        `json:"logsDir" mapstructure:"logsDir"`
	History  HistoryConfig `json:"history" mapstructure:"history"`
	Brush    BrushConfig   `json:"brush" mapstructure:"brush"`
	Layout   LayoutConfig  `json:"layout" mapstructure:"layout"`
	Canvas   CanvasConfig  `json:"canvas" mapstructure:"canvas"`
	Export   ExportConfig  `json:"export" mapstructure:"export"`
	Storage  StorageConfig `json:"storage" mapstructure:"storage"`
}

// HistoryConfig holds the undo/redo settings.
type HistoryConfig struct {
	Limit    int  `json:"limit" mapstructure:"limit"`
	KeepRedo bool `json:"keepRedo" mapstructure:"keepRedo"`
}

// BrushConfig holds the initial brush.
type BrushConfig struct {
	Color    string `json:"color" mapstructure:"color"`
	Size     int    `json:"size" mapstructure:"size"`
	Cap      string `json:"cap" mapstructure:"cap"`
	Softness int    `json:"softness" mapstructure:"softness"`
}

// LayoutConfig holds the viewport ratios used to size the canvas.
type LayoutConfig struct {
	WidthRatio  float64 `json:"widthRatio" mapstructure:"widthRatio"`
	HeightRatio float64 `json:"heightRatio" mapstructure:"heightRatio"`
}

// CanvasConfig holds the initial canvas size.
type CanvasConfig struct {
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// ExportConfig holds the save settings.
type ExportConfig struct {
	Format   string `json:"format" mapstructure:"format"`
	Filename string `json:"filename" mapstructure:"filename"`
}

// StorageConfig holds the drawing archive settings.
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("history.limit", 10)
	viper.SetDefault("history.keepRedo", false)

	viper.SetDefault("brush.color", "#000000")
	viper.SetDefault("brush.size", 5)
	viper.SetDefault("brush.cap", "round")
	viper.SetDefault("brush.softness", 0)

	viper.SetDefault("layout.widthRatio", 0.9)
	viper.SetDefault("layout.heightRatio", 0.6)

	viper.SetDefault("canvas.width", 800)
	viper.SetDefault("canvas.height", 600)

	viper.SetDefault("export.format", "png")
	viper.SetDefault("export.filename", "drawing.png")

	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.path", "./doodle.db")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. The defaults are
// registered even when the file cannot be read.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// Settings decodes the current configuration into a Config.
func Settings() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %v", err)
	}
	return c, nil
}
