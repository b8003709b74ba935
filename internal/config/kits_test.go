package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKitsFileMissing(t *testing.T) {
	kf, err := LoadKitsFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Empty(t, kf.Kits)
}

func TestLoadKitsFileValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kits.yaml")
	content := `
kits:
  - kit_id: kit-001
    api_url: http://10.0.0.5:8088
    name: North Fence
    location: perimeter-north
    enabled: true
  - api_url: http://10.0.0.6:8088
    name: South Fence
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kf, err := LoadKitsFile(path)
	require.NoError(t, err)
	require.Len(t, kf.Kits, 2)
	require.Equal(t, "kit-001", kf.Kits[0].KitID)
	require.True(t, kf.Kits[0].IsEnabled())
	require.True(t, kf.Kits[1].IsEnabled(), "enabled defaults to true when omitted")
}

func TestLoadKitsFileRejectsMissingURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kits.yaml")
	content := `
kits:
  - name: No URL Here
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadKitsFile(path)
	require.Error(t, err)
}
