package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leviathan-server/internal/util"
)

func TestInstance(t *testing.T) {
	config = Config{}
	clear1 := util.SetEnv("LEVIATHAN_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("LEVIATHAN_JWT_PRIVATE_KEY", "private2.key")
	defer clear2()

	a := assert.New(t)
	cfg := Instance()
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal(StoreRedis, cfg.Sync.Store)
	a.Equal(time.Second*2, cfg.Sync.PollInterval)
	a.Equal("redis:6379", cfg.Sync.Redis.Addr)
	a.Equal(2, cfg.Sync.Redis.DB)
	a.Equal("debug", cfg.Log.Level)

	// defaults survive when the file doesn't set them
	a.Equal(21, cfg.BlackjackTarget)

	// ensure that it's only loaded once
	_ = os.Setenv("LEVIATHAN_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("LEVIATHAN_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, StoreMemory, cfg.Sync.Store)
	assert.Equal(t, time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, 0.05, cfg.Fees.Platform)
	assert.Equal(t, 0.02, cfg.Fees.Creator)
}

func TestLoad_Environment(t *testing.T) {
	clear1 := util.SetEnv("LEVIATHAN_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()
	clear2 := util.SetEnv("LEVIATHAN_SYNC_POLL_INTERVAL", "250ms")
	defer clear2()

	assert.NoError(t, Load())
	assert.Equal(t, time.Millisecond*250, Instance().Sync.PollInterval)
}
