// Package config loads pdfmark settings from an optional YAML file.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "pdfmark.yaml"

const (
	KindHighlight = "highlight"
	KindPencil    = "pencil"
)

var ErrUnknownTool = errors.New("unknown tool kind")

type Window struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Toolbar float64 `yaml:"toolbar"`
	Strip   float64 `yaml:"strip"`
}

type Zoom struct {
	Step    float64 `yaml:"step"`
	Floor   float64 `yaml:"floor"`
	Ceiling float64 `yaml:"ceiling"`
}

type Tool struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Color string `yaml:"color"`
}

type Config struct {
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	Window Window `yaml:"window"`
	Zoom   Zoom   `yaml:"zoom"`

	DotRadius    float64 `yaml:"dot_radius"`
	PencilWidth  float64 `yaml:"pencil_width"`
	FallbackSize float64 `yaml:"fallback_size"`

	Tools []Tool `yaml:"tools"`

	// FramePath is where the shell writes the last rendered frame. Empty disables it.
	FramePath    string `yaml:"frame_path"`
	FrameFormat  string `yaml:"frame_format"`
	FrameQuality int    `yaml:"frame_quality"`

	ValidateOnSave bool `yaml:"validate_on_save"`
}

func Default() Config {
	return Config{
		LogFile:  "pdfmark.log",
		LogLevel: "debug",
		Window: Window{
			Width:   800,
			Height:  600,
			Toolbar: 40,
			Strip:   50,
		},
		Zoom: Zoom{
			Step:    1.2,
			Floor:   0.2,
			Ceiling: 2.0,
		},
		DotRadius:    2,
		PencilWidth:  2,
		FallbackSize: 10,
		Tools: []Tool{
			{Name: "hred", Kind: KindHighlight, Color: "#ff9999"},
			{Name: "hgreen", Kind: KindHighlight, Color: "#99ff99"},
			{Name: "hblue", Kind: KindHighlight, Color: "#99ccff"},
			{Name: "pred", Kind: KindPencil, Color: "#ff0000"},
			{Name: "pblue", Kind: KindPencil, Color: "#0000ff"},
		},
		FramePath:    "pdfmark-frame.png",
		FrameFormat:  "png",
		FrameQuality: 90,
	}
}

// Load reads path over the defaults. A missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && path == DefaultPath {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Zoom.Step <= 1 {
		return errors.Errorf("zoom step must be greater than 1, got %v", c.Zoom.Step)
	}
	if c.Zoom.Floor <= 0 || c.Zoom.Ceiling < c.Zoom.Floor {
		return errors.Errorf("invalid zoom range [%v, %v]", c.Zoom.Floor, c.Zoom.Ceiling)
	}
	if c.Window.Height <= c.Window.Toolbar+c.Window.Strip || c.Window.Width <= 0 {
		return errors.New("window has no canvas area")
	}

	seen := map[string]bool{}
	for _, t := range c.Tools {
		switch strings.ToLower(t.Kind) {
		case KindHighlight, KindPencil:
		default:
			return errors.Wrapf(ErrUnknownTool, "tool %q has kind %q", t.Name, t.Kind)
		}
		if seen[t.Name] {
			return errors.Errorf("duplicate tool %q", t.Name)
		}
		seen[t.Name] = true
	}

	return nil
}
