package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 5000, s.Snow.Count)
	assert.Equal(t, float32(18), s.Camera.Radius)
	assert.Equal(t, [3]float32{0, -1, 0}, s.Camera.Target)
	assert.False(t, s.Remote.Enabled)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	s, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xmas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  width: 640
snow:
  count: 100
  seed: 42
remote:
  enabled: true
profiler:
  enabled: true
  interval: 500ms
log_level: debug
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height, "unset fields keep their defaults")
	assert.Equal(t, 100, s.Snow.Count)
	assert.Equal(t, uint64(42), s.Snow.Seed)
	assert.True(t, s.Remote.Enabled)
	assert.Equal(t, ":8080", s.Remote.Addr)
	assert.Equal(t, 500*time.Millisecond, s.Profiler.Interval)

	level, err := s.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("window:\n  widht: 10\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEmptyDocumentIsDefault(t *testing.T) {
	s, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestValidateRanges(t *testing.T) {
	cases := map[string]func(*Settings){
		"zero width":      func(s *Settings) { s.Window.Width = 0 },
		"msaa 2":          func(s *Settings) { s.Window.MSAA = 2 },
		"negative radius": func(s *Settings) { s.Camera.Radius = -1 },
		"fov 180":         func(s *Settings) { s.Camera.FovDegrees = 180 },
		"far below near":  func(s *Settings) { s.Camera.Far = 0.05 },
		"no flakes":       func(s *Settings) { s.Snow.Count = 0 },
		"flat bounds":     func(s *Settings) { s.Snow.BoundsMax[1] = s.Snow.BoundsMin[1] },
		"negative jitter": func(s *Settings) { s.Snow.Jitter = -0.1 },
		"mtl without obj": func(s *Settings) { s.Tree.MTL = "tree.mtl" },
		"remote no addr":  func(s *Settings) { s.Remote.Enabled, s.Remote.Addr = true, "" },
		"zero interval":   func(s *Settings) { s.Profiler.Enabled, s.Profiler.Interval = true, 0 },
		"log level":       func(s *Settings) { s.LogLevel = "loud" },
		"workers":         func(s *Settings) { s.Workers = -2 },
		"frame cap":       func(s *Settings) { s.FrameCap = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := Default()
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)
		})
	}
}
