package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// valueKind is how a setting is parsed and read back from the store.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindList
)

// setting binds a config key to a Config field and its validation rule.
type setting struct {
	key  string
	kind valueKind
	rule string
	get  func(c *domain.Config) any
	set  func(c *domain.Config, v any)
}

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
var settings = []setting{
	{"chunking.size", kindInt, "gt=0",
		func(c *domain.Config) any { return c.Chunking.Size },
		func(c *domain.Config, v any) { c.Chunking.Size = v.(int) }},
	{"chunking.overlap", kindInt, "gte=0",
		func(c *domain.Config) any { return c.Chunking.Overlap },
		func(c *domain.Config, v any) { c.Chunking.Overlap = v.(int) }},
	{"retrieval.top_k", kindInt, "gt=0",
		func(c *domain.Config) any { return c.Retrieval.TopK },
		func(c *domain.Config, v any) { c.Retrieval.TopK = v.(int) }},
	{"retrieval.threshold", kindFloat, "gte=-1,lte=1",
		func(c *domain.Config) any { return c.Retrieval.Threshold },
		func(c *domain.Config, v any) { c.Retrieval.Threshold = v.(float64) }},
	{"context.history_turns", kindInt, "gte=0",
		func(c *domain.Config) any { return c.Context.HistoryTurns },
		func(c *domain.Config, v any) { c.Context.HistoryTurns = v.(int) }},
	{"context.max_tokens", kindInt, "gte=0",
		func(c *domain.Config) any { return c.Context.MaxTokens },
		func(c *domain.Config, v any) { c.Context.MaxTokens = v.(int) }},
	{"context.encoding", kindString, "required",
		func(c *domain.Config) any { return c.Context.Encoding },
		func(c *domain.Config, v any) { c.Context.Encoding = v.(string) }},
	{"extraction.formats", kindList, "required,dive,oneof=pdf docx txt",
		func(c *domain.Config) any { return formatStrings(c.Extraction.Formats) },
		func(c *domain.Config, v any) { c.Extraction.Formats = toFormats(v.([]string)) }},
	{"extraction.max_file_size_mb", kindInt, "gt=0",
		func(c *domain.Config) any { return c.Extraction.MaxFileSizeMB },
		func(c *domain.Config, v any) { c.Extraction.MaxFileSizeMB = v.(int) }},
	{"index.backend", kindString, "oneof=sqlite postgres memory",
		func(c *domain.Config) any { return c.Index.Backend.String() },
		func(c *domain.Config, v any) { c.Index.Backend = domain.IndexBackend(v.(string)) }},
	{"index.path", kindString, "",
		func(c *domain.Config) any { return c.Index.Path },
		func(c *domain.Config, v any) { c.Index.Path = v.(string) }},
	{"index.postgres_dsn", kindString, "",
		func(c *domain.Config) any { return c.Index.PostgresDSN },
		func(c *domain.Config, v any) { c.Index.PostgresDSN = v.(string) }},
	{"index.dimensions", kindInt, "gte=0",
		func(c *domain.Config) any { return c.Index.Dimensions },
		func(c *domain.Config, v any) { c.Index.Dimensions = v.(int) }},
	{"embedding.provider", kindString, "oneof=ollama openai",
		func(c *domain.Config) any { return c.Embedding.Provider.String() },
		func(c *domain.Config, v any) { c.Embedding.Provider = domain.AIProvider(v.(string)) }},
	{"embedding.model", kindString, "",
		func(c *domain.Config) any { return c.Embedding.Model },
		func(c *domain.Config, v any) { c.Embedding.Model = v.(string) }},
	{"embedding.base_url", kindString, "omitempty,url",
		func(c *domain.Config) any { return c.Embedding.BaseURL },
		func(c *domain.Config, v any) { c.Embedding.BaseURL = v.(string) }},
	{"embedding.api_key", kindString, "",
		func(c *domain.Config) any { return c.Embedding.APIKey },
		func(c *domain.Config, v any) { c.Embedding.APIKey = v.(string) }},
	{"llm.provider", kindString, "oneof=ollama openai anthropic",
		func(c *domain.Config) any { return c.LLM.Provider.String() },
		func(c *domain.Config, v any) { c.LLM.Provider = domain.AIProvider(v.(string)) }},
	{"llm.model", kindString, "",
		func(c *domain.Config) any { return c.LLM.Model },
		func(c *domain.Config, v any) { c.LLM.Model = v.(string) }},
	{"llm.base_url", kindString, "omitempty,url",
		func(c *domain.Config) any { return c.LLM.BaseURL },
		func(c *domain.Config, v any) { c.LLM.BaseURL = v.(string) }},
	{"llm.api_key", kindString, "",
		func(c *domain.Config) any { return c.LLM.APIKey },
		func(c *domain.Config, v any) { c.LLM.APIKey = v.(string) }},
	{"llm.temperature", kindFloat, "gte=0,lte=2",
		func(c *domain.Config) any { return c.LLM.Temperature },
		func(c *domain.Config, v any) { c.LLM.Temperature = v.(float64) }},
	{"llm.max_tokens", kindInt, "gt=0",
		func(c *domain.Config) any { return c.LLM.MaxTokens },
		func(c *domain.Config, v any) { c.LLM.MaxTokens = v.(int) }},
	{"server.addr", kindString, "required,hostname_port",
		func(c *domain.Config) any { return c.Server.Addr },
		func(c *domain.Config, v any) { c.Server.Addr = v.(string) }},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
	}
}

// Load overlays stored values on the defaults and validates the result.
func (s *SettingsService) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	for _, st := range settings {
		if _, ok := s.configStore.Get(st.key); !ok {
			continue
		}
		st.set(&cfg, s.read(st))
	}

	if err := s.Validate(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting of cfg against its rule.
func (s *SettingsService) Validate(cfg domain.Config) error {
	for _, st := range settings {
		value := st.get(&cfg)
		if err := s.validate.Var(value, st.rule); err != nil {
			return fmt.Errorf("%w: %s=%v: %w", domain.ErrInvalidInput, st.key, value, err)
		}
	}
	return nil
}

// Set parses value for key, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(st.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.validate.Var(parsed, st.rule); err != nil {
		return fmt.Errorf("%w: %s=%v: %w", domain.ErrInvalidInput, key, parsed, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Get returns the effective value of key.
func (s *SettingsService) Get(key string) (string, error) {
	st, ok := lookupSetting(key)
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	return formatValue(st.get(&cfg)), nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settings))
	for i, st := range settings {
		keys[i] = st.key
	}
	return keys
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// read fetches a stored value typed for st.
func (s *SettingsService) read(st setting) any {
	switch st.kind {
	case kindInt:
		return s.configStore.GetInt(st.key)
	case kindFloat:
		return s.configStore.GetFloat(st.key)
	case kindList:
		return s.configStore.GetStringSlice(st.key)
	default:
		return s.configStore.GetString(st.key)
	}
}

// ApplyEnv overlays credentials and endpoints from the environment.
// lookup is typically os.LookupEnv. Set variables take precedence over
// stored API keys and DSN; OLLAMA_HOST only fills an empty base URL.
func ApplyEnv(cfg domain.Config, lookup func(string) (string, bool)) domain.Config {
	if key, ok := lookupNonEmpty(lookup, "OPENAI_API_KEY"); ok {
		if cfg.Embedding.Provider == domain.AIProviderOpenAI {
			cfg.Embedding.APIKey = key
		}
		if cfg.LLM.Provider == domain.AIProviderOpenAI {
			cfg.LLM.APIKey = key
		}
	}
	if key, ok := lookupNonEmpty(lookup, "ANTHROPIC_API_KEY"); ok && cfg.LLM.Provider == domain.AIProviderAnthropic {
		cfg.LLM.APIKey = key
	}
	if dsn, ok := lookupNonEmpty(lookup, "SERCHA_RAG_POSTGRES_DSN"); ok {
		cfg.Index.PostgresDSN = dsn
	}
	if host, ok := lookupNonEmpty(lookup, "OLLAMA_HOST"); ok {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		if cfg.Embedding.Provider == domain.AIProviderOllama && cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = host
		}
		if cfg.LLM.Provider == domain.AIProviderOllama && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = host
		}
	}
	return cfg
}

func lookupNonEmpty(lookup func(string) (string, bool), name string) (string, bool) {
	v, ok := lookup(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func lookupSetting(key string) (setting, bool) {
	for _, st := range settings {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", raw)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return f, nil
	case kindList:
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	default:
		return raw, nil
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func formatStrings(formats []domain.Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.String()
	}
	return out
}

func toFormats(values []string) []domain.Format {
	out := make([]domain.Format, len(values))
	for i, v := range values {
		out[i] = domain.Format(v)
	}
	return out
}
