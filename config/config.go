// Package config loads the program settings from an optional YAML file. Every field defaults to
// the scene the program renders with no configuration at all.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a setting is out of range or the file cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config")

// Settings is the complete program configuration.
type Settings struct {
	Window   WindowSettings   `yaml:"window"`
	Camera   CameraSettings   `yaml:"camera"`
	Snow     SnowSettings     `yaml:"snow"`
	Tree     TreeSettings     `yaml:"tree"`
	Remote   RemoteSettings   `yaml:"remote"`
	Profiler ProfilerSettings `yaml:"profiler"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Workers sizes the snow worker pool; 0 means one worker per CPU.
	Workers int `yaml:"workers"`
	// FrameCap limits frames per second; 0 runs uncapped (or at the display rate with vsync).
	FrameCap int `yaml:"frame_cap"`
}

// WindowSettings configures the native window and swapchain.
type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `yaml:"msaa"`
}

// CameraSettings places the orbit camera. Angles are in radians except FovDegrees.
type CameraSettings struct {
	Radius     float32    `yaml:"radius"`
	Azimuth    float32    `yaml:"azimuth"`
	Elevation  float32    `yaml:"elevation"`
	Target     [3]float32 `yaml:"target"`
	FovDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
}

// SnowSettings configures the particle field.
type SnowSettings struct {
	Count int `yaml:"count"`
	// Seed makes the field reproducible; 0 picks a random seed.
	Seed        uint64     `yaml:"seed"`
	BoundsMin   [3]float32 `yaml:"bounds_min"`
	BoundsMax   [3]float32 `yaml:"bounds_max"`
	FallSpeed   float32    `yaml:"fall_speed"`
	Jitter      float32    `yaml:"jitter"`
	SpinDegrees float32    `yaml:"spin_degrees"`
}

// TreeSettings selects the tree geometry. An empty OBJ path uses the built-in procedural tree.
type TreeSettings struct {
	OBJ string `yaml:"obj"`
	MTL string `yaml:"mtl"`
}

// RemoteSettings controls the WebSocket touch input server.
type RemoteSettings struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ProfilerSettings controls periodic frame statistics logging.
type ProfilerSettings struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the settings of the stock scene.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "oxy-xmas",
			VSync:  true,
			MSAA:   4,
		},
		Camera: CameraSettings{
			Radius:     18,
			Azimuth:    1.7,
			Elevation:  0.9,
			Target:     [3]float32{0, -1, 0},
			FovDegrees: 45,
			Near:       0.1,
			Far:        100,
		},
		Snow: SnowSettings{
			Count:       5000,
			BoundsMin:   [3]float32{-10, -5, -10},
			BoundsMax:   [3]float32{10, 10, 10},
			FallSpeed:   0.01,
			Jitter:      0.01,
			SpinDegrees: 10,
		},
		Remote: RemoteSettings{
			Addr: ":8080",
		},
		Profiler: ProfilerSettings{
			Interval: time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads settings from path on top of Default. A missing file is not an error.
//
// Parameters:
//   - path: the YAML file path, or "" for defaults only
//
// Returns:
//   - Settings: the validated settings
//   - error: ErrInvalidConfig for undecodable or out-of-range values, or the read error
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		common.ComponentLogger("config").Info("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads YAML settings from r on top of Default. Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML stream
//
// Returns:
//   - Settings: the validated settings
//   - error: ErrInvalidConfig wrapping the decode or range failure
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate range-checks every setting.
//
// Returns:
//   - error: ErrInvalidConfig naming the first bad field, or nil
func (s Settings) Validate() error {
	bad := func(field string, value any) error {
		return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, field, value)
	}

	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return bad("window size", fmt.Sprintf("%dx%d", s.Window.Width, s.Window.Height))
	}
	if s.Window.MSAA != 1 && s.Window.MSAA != 4 {
		return bad("window.msaa", s.Window.MSAA)
	}
	if !finite(s.Camera.Radius) || s.Camera.Radius <= 0 {
		return bad("camera.radius", s.Camera.Radius)
	}
	if s.Camera.FovDegrees <= 0 || s.Camera.FovDegrees >= 180 {
		return bad("camera.fov_degrees", s.Camera.FovDegrees)
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		return bad("camera clip planes", fmt.Sprintf("near %v far %v", s.Camera.Near, s.Camera.Far))
	}
	if s.Snow.Count < 1 {
		return bad("snow.count", s.Snow.Count)
	}
	for i := range 3 {
		if !(s.Snow.BoundsMin[i] < s.Snow.BoundsMax[i]) {
			return bad("snow bounds", fmt.Sprintf("min %v max %v", s.Snow.BoundsMin, s.Snow.BoundsMax))
		}
	}
	if s.Snow.FallSpeed < 0 || s.Snow.Jitter < 0 || s.Snow.SpinDegrees < 0 {
		return bad("snow motion", fmt.Sprintf("fall %v jitter %v spin %v", s.Snow.FallSpeed, s.Snow.Jitter, s.Snow.SpinDegrees))
	}
	if s.Tree.MTL != "" && s.Tree.OBJ == "" {
		return bad("tree.mtl", "set without tree.obj")
	}
	if s.Remote.Enabled && s.Remote.Addr == "" {
		return bad("remote.addr", `""`)
	}
	if s.Profiler.Enabled && s.Profiler.Interval <= 0 {
		return bad("profiler.interval", s.Profiler.Interval)
	}
	if _, err := s.SlogLevel(); err != nil {
		return err
	}
	if s.Workers < 0 {
		return bad("workers", s.Workers)
	}
	if s.FrameCap < 0 {
		return bad("frame_cap", s.FrameCap)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
//
// Returns:
//   - slog.Level: the level
//   - error: ErrInvalidConfig for an unknown name
func (s Settings) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log_level = %q", ErrInvalidConfig, s.LogLevel)
	}
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
