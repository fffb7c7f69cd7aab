// Package config provides configuration loading and management for holobrowse.
// It handles loading configuration from YAML or TOML files and provides default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Layout parameters used when converting report coordinates to panel space
	Layout struct {
		// Scale divides report x/y coordinates into normalized panel units
		Scale float64 `yaml:"scale" toml:"scale"`

		// DepthScale further divides report depth after Scale
		DepthScale float64 `yaml:"depthScale" toml:"depthScale"`

		// ReportName is the report file expected in every dataset folder
		ReportName string `yaml:"reportName" toml:"reportName"`

		// PanelType is the type label assigned to loaded panels
		PanelType string `yaml:"panelType" toml:"panelType"`

		// CountFieldName names the first metadata field (number of detected regions)
		CountFieldName string `yaml:"countFieldName" toml:"countFieldName"`
	} `yaml:"layout" toml:"layout"`

	// Picking parameters
	Picking struct {
		// MaxDistance is the pick range, in multiples of the pointer direction
		MaxDistance float64 `yaml:"maxDistance" toml:"maxDistance"`

		// WindowDepth is the depth covered on each side of the current dataset
		WindowDepth float64 `yaml:"windowDepth" toml:"windowDepth"`

		// RayLength is the length of the controller pointer direction
		RayLength float64 `yaml:"rayLength" toml:"rayLength"`
	} `yaml:"picking" toml:"picking"`

	// Navigation parameters
	Navigation struct {
		// DeadZone ignores joystick values with a smaller magnitude
		DeadZone float64 `yaml:"deadZone" toml:"deadZone"`

		// Speed multiplies the forward joystick value per frame
		Speed float64 `yaml:"speed" toml:"speed"`

		// TurnDivisor divides the sideways joystick value into a yaw angle in radians
		TurnDivisor float64 `yaml:"turnDivisor" toml:"turnDivisor"`
	} `yaml:"navigation" toml:"navigation"`

	// Series parameters
	Series struct {
		// Undefined is the sentinel graphed for missing values
		Undefined float64 `yaml:"undefined" toml:"undefined"`
	} `yaml:"series" toml:"series"`

	// Bindings maps device event names to interactions
	Bindings Bindings `yaml:"bindings" toml:"bindings"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`
}

// Bindings names the device events the engine reacts to
type Bindings struct {
	ControllerPose   string `yaml:"controllerPose" toml:"controllerPose"`
	TriggerPressed   string `yaml:"triggerPressed" toml:"triggerPressed"`
	TriggerReleased  string `yaml:"triggerReleased" toml:"triggerReleased"`
	JoystickX        string `yaml:"joystickX" toml:"joystickX"`
	JoystickY        string `yaml:"joystickY" toml:"joystickY"`
	TouchpadPressed  string `yaml:"touchpadPressed" toml:"touchpadPressed"`
	TouchpadReleased string `yaml:"touchpadReleased" toml:"touchpadReleased"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Layout.Scale = 300.0
	cfg.Layout.DepthScale = 10.0
	cfg.Layout.ReportName = "reportRaw_refined.xml"
	cfg.Layout.PanelType = "Diatom"
	cfg.Layout.CountFieldName = "NB Particles detected"

	cfg.Picking.MaxDistance = 5.0
	cfg.Picking.WindowDepth = 10.0
	cfg.Picking.RayLength = 5.0

	cfg.Navigation.DeadZone = 0.1
	cfg.Navigation.Speed = 1.0
	cfg.Navigation.TurnDivisor = 10 * math.Pi

	cfg.Series.Undefined = -9999.0

	cfg.Bindings = Bindings{
		ControllerPose:   "HTC_Controller_1",
		TriggerPressed:   "HTC_Controller_1_Axis1Button_Pressed",
		TriggerReleased:  "HTC_Controller_1_Axis1Button_Released",
		JoystickX:        "Wand_Joystick_X_Change",
		JoystickY:        "Wand_Joystick_Y_Change",
		TouchpadPressed:  "HTC_Controller_1_Axis0Button_Pressed",
		TouchpadReleased: "HTC_Controller_1_Axis0Button_Released",
	}

	cfg.Output.Verbose = false

	return cfg
}

// Validate reports the first setting that would make the engine misbehave
func (c *Config) Validate() error {
	switch {
	case c.Layout.Scale <= 0:
		return fmt.Errorf("layout.scale must be positive, got %v", c.Layout.Scale)
	case c.Layout.DepthScale <= 0:
		return fmt.Errorf("layout.depthScale must be positive, got %v", c.Layout.DepthScale)
	case c.Picking.MaxDistance <= 0:
		return fmt.Errorf("picking.maxDistance must be positive, got %v", c.Picking.MaxDistance)
	case c.Picking.WindowDepth < 0:
		return fmt.Errorf("picking.windowDepth must not be negative, got %v", c.Picking.WindowDepth)
	case c.Picking.RayLength <= 0:
		return fmt.Errorf("picking.rayLength must be positive, got %v", c.Picking.RayLength)
	case c.Navigation.TurnDivisor == 0:
		return fmt.Errorf("navigation.turnDivisor must not be zero")
	}
	return nil
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file, chosen by extension
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	var err error
	if isTOML(configPath) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
