package config

import (
	"errors"
	"github.com/allape/camsnap/envar"
	"github.com/allape/gogger"
	"github.com/pelletier/go-toml/v2"
	"os"
)

var l = gogger.New("config")

const DefaultConfigPath = "camsnap.toml"

type IndicatorDriverType string

const (
	IndicatorNone       IndicatorDriverType = "none"
	IndicatorSerialPort IndicatorDriverType = "serialport"
	IndicatorShell      IndicatorDriverType = "shell"
)

type HTTP struct {
	Addr   string `toml:"addr"`
	Cors   bool   `toml:"cors"`
	WSPath string `toml:"ws_path"`
	UI     bool   `toml:"ui"`
}

type Camera struct {
	Pattern       string `toml:"pattern"`
	MaxFrameBytes int    `toml:"max_frame_bytes"`
	Quality       int    `toml:"quality"`
}

type Snapshot struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Motion struct {
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	Threshold float64 `toml:"threshold"`
}

// Placeholder is served instead of an error body when a snapshot fails.
// Zero width or height uses the requested snapshot size.
type Placeholder struct {
	Enabled bool `toml:"enabled"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
}

type Indicator struct {
	Type IndicatorDriverType `toml:"type"`
	Src  string              `toml:"src"`
	Ext  TagString           `toml:"ext"`
	On   ShellCommand        `toml:"on"`
	Off  ShellCommand        `toml:"off"`
}

type Config struct {
	HTTP        HTTP        `toml:"http"`
	Camera      Camera      `toml:"camera"`
	Snapshot    Snapshot    `toml:"snapshot"`
	Motion      Motion      `toml:"motion"`
	Placeholder Placeholder `toml:"placeholder"`
	Indicator   Indicator   `toml:"indicator"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:   ":8080",
			WSPath: "/ws",
			UI:     true,
		},
		Camera: Camera{
			Pattern:       "/dev/video*",
			MaxFrameBytes: 32 << 20,
			Quality:       85,
		},
		Snapshot: Snapshot{
			Width:  640,
			Height: 480,
		},
		Motion: Motion{
			Width:     320,
			Height:    240,
			Threshold: 10,
		},
		Indicator: Indicator{
			Type: IndicatorNone,
		},
	}
}

// Path returns the first program argument, then $CAMSNAP_CONFIG, then
// DefaultConfigPath.
func Path() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return envar.Getenv(envar.CamsnapConfig, DefaultConfigPath)
}

func GetConfig() (Config, error) {
	return Load(Path())
}

// Load reads configFile over Default. A missing file is not an error.
func Load(configFile string) (Config, error) {
	l.Info().Println("reading config file:", configFile)

	config := Default()

	configData, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Warn().Println("config file not found, using defaults:", configFile)
			return config, nil
		}
		return config, err
	}

	err = toml.Unmarshal(configData, &config)
	if err != nil {
		return config, err
	}

	l.Verbose().Printf("use config: %+v", config)

	return config, nil
}
