package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(nil, envMap(map[string]string{"GEMINI_API_KEY": "k"}))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "gemini", cfg.LLM.Client.Provider)
	assert.Equal(t, "k", cfg.LLM.Client.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.GenerationTimeout)
	assert.Zero(t, cfg.Pipeline.FormatRetries)
	assert.False(t, cfg.Pipeline.StrictSteps)
	assert.Equal(t, []string{"https://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.Log.JSON)
	assert.False(t, cfg.Knowledge.S3.UseSSL, "local stack talks plain HTTP to MinIO")
	assert.Empty(t, cfg.HTTP.TrustedProxies)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse([]string{"-port", ":9000"}, envMap(map[string]string{
		"APP_ENV":            "production",
		"LLM_PROVIDER":       "OpenAI",
		"OPENAI_API_KEY":     "sk",
		"LLM_MODEL":          "gpt-4o-mini",
		"GENERATION_TIMEOUT": "5s",
		"FORMAT_RETRIES":     "1",
		"STRICT_STEP_BOUNDS": "true",
		"CORS_ORIGINS":       "https://a.example, https://b.example",
		"KB_S3_BUCKET":       "kb",
		"TRUSTED_PROXIES":    "10.0.0.0/8, 192.168.1.5",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "openai", cfg.LLM.Client.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Client.Model)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.GenerationTimeout)
	assert.Equal(t, 1, cfg.Pipeline.FormatRetries)
	assert.True(t, cfg.Pipeline.StrictSteps)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.Knowledge.S3.UseSSL)
	assert.Empty(t, cfg.Knowledge.S3.Endpoint)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.5"}, cfg.HTTP.TrustedProxies)
}

func TestParse_PortEnvWins(t *testing.T) {
	cfg, err := parse([]string{"-port", ":9000"}, envMap(map[string]string{"PORT": "7000", "LLM_PROVIDER": "fake"}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Port)
}

func TestParse_Errors(t *testing.T) {
	_, err := parse(nil, envMap(nil))
	require.ErrorContains(t, err, "no API key")

	_, err = parse(nil, envMap(map[string]string{"LLM_PROVIDER": "claude"}))
	require.ErrorContains(t, err, "unknown LLM_PROVIDER")

	_, err = parse(nil, envMap(map[string]string{"LLM_PROVIDER": "fake", "GENERATION_TIMEOUT": "soon", "CLIENT_RPS": "x"}))
	require.ErrorContains(t, err, "GENERATION_TIMEOUT")
	require.ErrorContains(t, err, "CLIENT_RPS")

	_, err = parse(nil, envMap(map[string]string{"LLM_PROVIDER": "fake", "FORMAT_RETRIES": "-1"}))
	require.ErrorContains(t, err, "FORMAT_RETRIES")
}

func TestLocalDefaults_MinIO(t *testing.T) {
	cfg, err := parse(nil, envMap(map[string]string{
		"LLM_PROVIDER":        "fake",
		"KB_S3_BUCKET":        "kb",
		"KB_S3_OBJECT":        "tech_support_dataset.csv",
		"MINIO_ROOT_USER":     "minio",
		"MINIO_ROOT_PASSWORD": "minio123",
	}))
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", cfg.Knowledge.S3.Endpoint)
	assert.Equal(t, "minio", cfg.Knowledge.S3.AccessKey)
	assert.Equal(t, "minio123", cfg.Knowledge.S3.SecretKey)
}

func TestAPIKey(t *testing.T) {
	env := envMap(map[string]string{"GOOGLE_API_KEY": " g ", "OPENAI_API_KEY": "sk"})
	assert.Equal(t, "g", APIKey("gemini", env), "GOOGLE_API_KEY backs gemini")
	assert.Equal(t, "g", APIKey(" Gemini ", env))
	assert.Equal(t, "sk", APIKey("openai", env))
	assert.Empty(t, APIKey("fake", env))

	env = envMap(map[string]string{"GEMINI_API_KEY": "primary", "GOOGLE_API_KEY": "g"})
	assert.Equal(t, "primary", APIKey("gemini", env))
}

func TestJSONMode(t *testing.T) {
	on, err := JSONMode(envMap(nil))
	require.NoError(t, err)
	assert.True(t, on)

	on, err = JSONMode(envMap(map[string]string{"LLM_JSON_MODE": "false"}))
	require.NoError(t, err)
	assert.False(t, on)

	_, err = JSONMode(envMap(map[string]string{"LLM_JSON_MODE": "maybe"}))
	require.ErrorContains(t, err, "LLM_JSON_MODE")

	cfg, err := parse(nil, envMap(map[string]string{"GOOGLE_API_KEY": "g", "LLM_JSON_MODE": "0"}))
	require.NoError(t, err)
	assert.Equal(t, "g", cfg.LLM.Client.APIKey)
	assert.False(t, cfg.LLM.Client.JSONMode)
}
