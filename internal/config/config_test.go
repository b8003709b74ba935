package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := Init("")
	require.Error(t, err)
}

func TestInitAppliesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wardragon")
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("POLL_INTERVAL_FAST", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	require.NoError(t, Init(""))
	require.Equal(t, "postgres://localhost/wardragon", Keys.DatabaseURL)
	require.Equal(t, 9191, Keys.HTTPPort)
	require.Equal(t, 2*time.Second, Keys.PollIntervalFast)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, Keys.CORSOrigins)
}

func TestInitRejectsInvalidDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/wardragon")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	require.Error(t, Init(""))
}
