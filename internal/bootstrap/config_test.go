package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDefaultsWithoutFile(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.LocalPort)
	assert.Equal(t, []int{5001}, cfg.RemotePorts)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 270*time.Millisecond, cfg.TimeoutLeniency)
	assert.Equal(t, 9, cfg.BoardSize)
	assert.Equal(t, "heuristic", cfg.Oracle)
}

func TestSetupReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TURN_TIMEOUT=10s\nREMOTE_PORTS=6001,6002\nBOARD_SIZE=7\nORACLE=rollout\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BOARD_SIZE", "13")
	t.Setenv("SEARCH_ITERATIONS", "400")

	cfg, err := Setup(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.TurnTimeout)
	assert.Equal(t, []int{6001, 6002}, cfg.RemotePorts)
	assert.Equal(t, 13, cfg.BoardSize)
	assert.Equal(t, "rollout", cfg.Oracle)

	sc := cfg.Search()
	assert.Equal(t, 400, sc.Iterations)
	assert.Equal(t, 1.0, sc.C)
}
