package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alwan/alwan/internal/recoil"
	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath  = "config/alwan.yaml"
	TemplatePath = "config/template"

	MouseSendInput = "sendinput"
	MouseLog       = "log"
)

var Version = "dev"

type Config struct {
	Debug struct {
		Enabled  bool `yaml:"enabled"`
		AlwaysOn bool `yaml:"alwaysOn"` // acquire every tick even with nothing engaged
		Log      bool `yaml:"log"`
		LogTicks bool `yaml:"logTicks"`
	} `yaml:"debug"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`
	Aim              struct {
		SmoothingFactor  float64 `yaml:"smoothingFactor"`
		Speed            float64 `yaml:"speed"`
		YSpeedMultiplier float64 `yaml:"ySpeedMultiplier"`
	} `yaml:"aim"`
	Recoil struct {
		Mode        string  `yaml:"mode"`
		RecoilX     float64 `yaml:"recoilX"`
		RecoilY     float64 `yaml:"recoilY"`
		RecoverRate float64 `yaml:"recoverRate"`
		MaxOffset   float64 `yaml:"maxOffset"`
	} `yaml:"recoil"`
	Trigger struct {
		Delay         int `yaml:"delay"`         // ms
		Randomization int `yaml:"randomization"` // ms added on top of delay, exclusive
	} `yaml:"trigger"`
	Loop struct {
		MinLoopTime      float64 `yaml:"minLoopTime"`      // ms
		OverrunSustained int     `yaml:"overrunSustained"` // seconds, 0 disables the monitor
	} `yaml:"loop"`
	Screen struct {
		FovX             int    `yaml:"fovX"`
		FovY             int    `yaml:"fovY"`
		OffsetX          int    `yaml:"offsetX"`
		OffsetY          int    `yaml:"offsetY"`
		TriggerThreshold int    `yaml:"triggerThreshold"`
		Detector         string `yaml:"detector"`
	} `yaml:"screen"`
	Mouse struct {
		Type          string `yaml:"type"`
		ClickHoldMean int    `yaml:"clickHoldMean"` // ms
		ClickHoldMin  int    `yaml:"clickHoldMin"`
		ClickHoldMax  int    `yaml:"clickHoldMax"`
	} `yaml:"mouse"`
	KeyBindings KeyBindings `yaml:"keyBindings"`
}

// MinLoopTime returns the pacing floor as a duration.
func (c *Config) MinLoopTime() time.Duration {
	return time.Duration(c.Loop.MinLoopTime * float64(time.Millisecond))
}

func (c *Config) RecoilConfig() recoil.Config {
	return recoil.Config{
		Mode:        recoil.Mode(c.Recoil.Mode),
		RateX:       c.Recoil.RecoilX,
		RateY:       c.Recoil.RecoilY,
		RecoverRate: c.Recoil.RecoverRate,
		MaxOffset:   c.Recoil.MaxOffset,
	}
}

// AcquireEveryTick reports whether the debug override forces target
// acquisition regardless of what is engaged.
func (c *Config) AcquireEveryTick() bool {
	return c.Debug.Enabled && c.Debug.AlwaysOn
}

// newConfig returns the values that hold when a key is absent from the file.
// Gains are set here rather than in applyDefaults because zero is a valid
// gain.
func newConfig() *Config {
	cfg := &Config{}
	cfg.Aim.Speed = 1
	cfg.Aim.YSpeedMultiplier = 1
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Recoil.Mode == "" {
		c.Recoil.Mode = string(recoil.ModeOffset)
	}
	if c.Screen.FovX <= 0 {
		c.Screen.FovX = 256
	}
	if c.Screen.FovY <= 0 {
		c.Screen.FovY = 256
	}
	if c.Screen.Detector == "" {
		c.Screen.Detector = "none"
	}
	if c.Mouse.Type == "" {
		c.Mouse.Type = MouseSendInput
	}
	if c.Mouse.ClickHoldMean <= 0 {
		c.Mouse.ClickHoldMean = 25
	}
	if c.Mouse.ClickHoldMin <= 0 {
		c.Mouse.ClickHoldMin = 10
	}
	if c.Mouse.ClickHoldMax <= 0 {
		c.Mouse.ClickHoldMax = 80
	}
	if c.LogSaveDirectory == "" {
		c.LogSaveDirectory = "logs"
	}
	c.KeyBindings.applyDefaults()
}

// Validate rejects settings the loop cannot run with. It does not clamp
// values that are only floored at use time, such as the smoothing factor.
func (c *Config) Validate() error {
	var errs []error

	if _, err := recoil.ParseMode(c.Recoil.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Recoil.RecoverRate < 0 {
		errs = append(errs, errors.New("recoil.recoverRate cannot be negative"))
	}
	if c.Trigger.Delay < 0 || c.Trigger.Randomization < 0 {
		errs = append(errs, errors.New("trigger delay and randomization cannot be negative"))
	}
	if c.Loop.MinLoopTime < 0 {
		errs = append(errs, errors.New("loop.minLoopTime cannot be negative"))
	}
	if c.Loop.OverrunSustained < 0 {
		errs = append(errs, errors.New("loop.overrunSustained cannot be negative"))
	}
	if c.Screen.TriggerThreshold < 0 {
		errs = append(errs, errors.New("screen.triggerThreshold cannot be negative"))
	}
	switch c.Mouse.Type {
	case MouseSendInput, MouseLog:
	default:
		errs = append(errs, fmt.Errorf("unknown mouse type %q", c.Mouse.Type))
	}
	if c.Mouse.ClickHoldMin > c.Mouse.ClickHoldMax {
		errs = append(errs, errors.New("mouse.clickHoldMin is greater than mouse.clickHoldMax"))
	}
	if err := c.KeyBindings.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Parse decodes a YAML document, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := newConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FileProvider re-reads the configuration file on every Load, so a reload
// always picks up what is currently on disk.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Load() (*Config, error) {
	path := getAbsPath(p.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", p.Path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	return cfg, nil
}

// EnsureFromTemplate copies the file with the same name from the template
// directory when no configuration exists yet. It returns true if a copy was made.
func EnsureFromTemplate(path, template string) (bool, error) {
	path = getAbsPath(path)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("error checking %s: %w", path, err)
	}

	template = getAbsPath(template)
	if _, err := os.Stat(template); err != nil {
		return false, fmt.Errorf("no configuration found and template is missing: %w", err)
	}

	if err := cp.Copy(filepath.Join(template, filepath.Base(path)), path); err != nil {
		return false, fmt.Errorf("error copying template: %w", err)
	}

	return true, nil
}

func getAbsPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		return relPath
	}
	return filepath.Join(cwd, relPath)
}
