package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/tools/counter/v2\n\ngo 1.24\n")

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/tools/counter/v2", r.ModulePath)
	assert.Equal(t, "counter", r.AppName)
	assert.Equal(t, "", r.ConfigFile)
	assert.Equal(t, DefaultWidth, r.Width)
	assert.Equal(t, DefaultHeight, r.Height)
	assert.Equal(t, slog.LevelInfo, r.LogLevel)
	assert.Equal(t, DefaultItems, r.Items)
	assert.Empty(t, r.AssetsDir)
}

func TestResolveWithoutGoMod(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sketch")
	require.NoError(t, os.Mkdir(dir, 0o755))

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Empty(t, r.ModulePath)
	assert.Equal(t, "sketch", r.AppName)
}

func TestResolveYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, YAMLFile, `
app:
  name: Gallery
  assets: assets
  image: logo.png
  items: [one, two]
window:
  width: 320
  height: 240
log:
  level: debug
debug:
  addr: 127.0.0.1:0
  trace_frames: 10
`)

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, YAMLFile), r.ConfigFile)
	assert.Equal(t, "Gallery", r.AppName)
	assert.Equal(t, filepath.Join(dir, "assets"), r.AssetsDir)
	assert.Equal(t, "logo.png", r.Image)
	assert.Equal(t, []string{"one", "two"}, r.Items)
	assert.Equal(t, 320, r.Width)
	assert.Equal(t, 240, r.Height)
	assert.Equal(t, slog.LevelDebug, r.LogLevel)
	assert.Equal(t, "127.0.0.1:0", r.DebugAddr)
	assert.Equal(t, 10, r.TraceSize)
	assert.Equal(t, DefaultSlowFrameMs, r.SlowFrame)
}

func TestResolveTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TOMLFile, `
[app]
name = "Gallery"
items = ["x"]

[window]
width = 1024

[log]
level = "warn"
`)

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TOMLFile), r.ConfigFile)
	assert.Equal(t, "Gallery", r.AppName)
	assert.Equal(t, []string{"x"}, r.Items)
	assert.Equal(t, 1024, r.Width)
	assert.Equal(t, DefaultHeight, r.Height)
	assert.Equal(t, slog.LevelWarn, r.LogLevel)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{"both files", map[string]string{YAMLFile: "", TOMLFile: ""}, "keep one"},
		{"bad yaml", map[string]string{YAMLFile: "app: [unclosed"}, "failed to parse weft.yaml"},
		{"bad toml", map[string]string{TOMLFile: "[app\n"}, "failed to parse weft.toml"},
		{"bad level", map[string]string{YAMLFile: "log:\n  level: loud\n"}, "invalid log.level"},
		{"negative size", map[string]string{YAMLFile: "window:\n  width: -1\n"}, "must not be negative"},
		{"image without assets", map[string]string{YAMLFile: "app:\n  image: a.png\n"}, "requires app.assets"},
		{"empty go.mod", map[string]string{"go.mod": "go 1.24\n"}, "module path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			_, err := Resolve(dir)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info+2", slog.LevelInfo + 2},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFindProjectRootFrom(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, TOMLFile, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, FindProjectRootFrom(nested))

	lone := t.TempDir()
	assert.Equal(t, lone, FindProjectRootFrom(lone))
}
