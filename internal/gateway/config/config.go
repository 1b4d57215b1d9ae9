package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"supportdesk/internal/knowledge"
	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/logging"
)

type Config struct {
	Port      string
	Env       string
	LLM       LLMConfig
	Pipeline  PipelineConfig
	Knowledge knowledge.SourceConfig
	HTTP      HTTPConfig
	Log       logging.Config
}

type LLMConfig struct {
	Client  llmclient.Config
	RPS     float64
	Burst   int
	Retries int
}

type PipelineConfig struct {
	GenerationTimeout time.Duration
	FormatRetries     int
	StrictSteps       bool
}

type HTTPConfig struct {
	CORSOrigins []string
	ClientRPS   float64
	ClientBurst int
	// ClientCacheSize bounds the number of per-client limiters kept at once.
	ClientCacheSize int
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is used
	// to identify clients. Empty means the peer address is always used.
	TrustedProxies []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(os.Args[1:], os.Getenv)
}

func parse(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if envPort := env("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	appEnv := firstNonEmpty(env("APP_ENV"), "local")

	var errs []string
	num := func(key string, def float64) float64 {
		raw := env(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}
	integer := func(key string, def int) int {
		raw := env(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}
	boolean := func(key string, def bool) bool {
		raw := env(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}
	duration := func(key string, def time.Duration) time.Duration {
		raw := env(key)
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}

	provider := llmclient.NormalizeProvider(env("LLM_PROVIDER"))
	cfg := &Config{
		Port: *port,
		Env:  appEnv,
		LLM: LLMConfig{
			Client: llmclient.Config{
				Provider: provider,
				Model:    env("LLM_MODEL"),
				APIKey:   APIKey(provider, env),
				BaseURL:  env("OPENAI_BASE_URL"),
				JSONMode: boolean("LLM_JSON_MODE", true),
			},
			RPS:     num("LLM_RPS", 1),
			Burst:   integer("LLM_BURST", 2),
			Retries: integer("LLM_RETRIES", 3),
		},
		Pipeline: PipelineConfig{
			GenerationTimeout: duration("GENERATION_TIMEOUT", 30*time.Second),
			FormatRetries:     integer("FORMAT_RETRIES", 0),
			StrictSteps:       boolean("STRICT_STEP_BOUNDS", false),
		},
		Knowledge: knowledge.SourceConfig{
			Path:          env("KB_PATH"),
			PostgresDSN:   env("KB_PG_DSN"),
			PostgresTable: env("KB_PG_TABLE"),
			S3: knowledge.S3Config{
				Endpoint:  env("KB_S3_ENDPOINT"),
				Region:    env("KB_S3_REGION"),
				AccessKey: env("KB_S3_ACCESS_KEY"),
				SecretKey: env("KB_S3_SECRET_KEY"),
				Bucket:    env("KB_S3_BUCKET"),
				Object:    env("KB_S3_OBJECT"),
				UseSSL:    boolean("KB_S3_USE_SSL", true),
			},
		},
		HTTP: HTTPConfig{
			CORSOrigins:     splitList(firstNonEmpty(env("CORS_ORIGINS"), "https://localhost:5173")),
			ClientRPS:       num("CLIENT_RPS", 2),
			ClientBurst:     integer("CLIENT_BURST", 5),
			ClientCacheSize: integer("CLIENT_CACHE_SIZE", 1024),
			TrustedProxies:  splitList(env("TRUSTED_PROXIES")),
		},
		Log: logging.Config{
			Level: firstNonEmpty(env("LOG_LEVEL"), "info"),
			JSON:  !strings.EqualFold(appEnv, "local"),
			File:  env("LOG_FILE"),
		},
	}
	if strings.EqualFold(appEnv, "local") {
		applyLocalDefaults(cfg, env)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Client.Provider {
	case llmclient.ProviderGemini, llmclient.ProviderOpenAI:
		if c.LLM.Client.APIKey == "" {
			return fmt.Errorf("%s provider selected but no API key is set", c.LLM.Client.Provider)
		}
	case llmclient.ProviderFake:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Client.Provider)
	}
	if c.Pipeline.FormatRetries < 0 {
		return fmt.Errorf("FORMAT_RETRIES must not be negative")
	}
	return nil
}

// APIKey resolves the credential for provider from env. Gemini also accepts
// GOOGLE_API_KEY.
func APIKey(provider string, getenv func(string) string) string {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }
	switch llmclient.NormalizeProvider(provider) {
	case llmclient.ProviderGemini:
		return firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY"))
	case llmclient.ProviderOpenAI:
		return env("OPENAI_API_KEY")
	}
	return ""
}

// JSONMode reads LLM_JSON_MODE, defaulting to true.
func JSONMode(getenv func(string) string) (bool, error) {
	raw := strings.TrimSpace(getenv("LLM_JSON_MODE"))
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true, fmt.Errorf("LLM_JSON_MODE: %w", err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
