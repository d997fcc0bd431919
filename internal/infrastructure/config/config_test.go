package config

import (
	"testing"
	"time"

	"recipe-matcher/internal/core/recipe"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, recipe.PolicyFullFirst, cfg.Matcher.Policy)
	assert.Equal(t, recipe.ContainmentSubstring, cfg.Matcher.Containment)
	assert.Equal(t, 5, cfg.Matcher.TopN)
	assert.True(t, cfg.Matcher.Stem)
	assert.True(t, cfg.Matcher.CleanEncoding)
	assert.False(t, cfg.Matcher.IncludeInstructions)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.NotEmpty(t, cfg.Dataset.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MATCH_POLICY", "Partial")
	t.Setenv("MATCH_TOP_N", "3")
	t.Setenv("MATCH_CONTAINMENT", " Word ")
	t.Setenv("DATASET_PATH", "/tmp/recipes.csv")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("APP_MATCHER_INCLUDE_TITLE", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, recipe.PolicyPartial, cfg.Matcher.Policy)
	assert.Equal(t, recipe.ContainmentWord, cfg.Matcher.Containment)
	assert.Equal(t, 3, cfg.Matcher.TopN)
	assert.Equal(t, "/tmp/recipes.csv", cfg.Dataset.Path)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Matcher.IncludeTitle)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown policy", env: map[string]string{"MATCH_POLICY": "fuzzy"}},
		{name: "unknown containment", env: map[string]string{"MATCH_CONTAINMENT": "fuzzy"}},
		{name: "zero top n", env: map[string]string{"MATCH_TOP_N": "0"}},
		{name: "unknown session store", env: map[string]string{"SESSION_STORE": "disk"}},
		{name: "max top n below top n", env: map[string]string{"MATCH_TOP_N": "80"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
