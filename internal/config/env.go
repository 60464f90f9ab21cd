package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "INGESTION_"

// ApplyEnv overrides cfg with any INGESTION_* variables that are set.
func ApplyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_FILE_SIZE_MB", &cfg.Ingestion.MaxFileSizeMB},
		{"BATCH_SIZE", &cfg.Batch.BatchSize},
		{"MIN_SKILLS_COUNT", &cfg.Validation.MinSkillsCount},
		{"TRUNCATE_RAW_TEXT", &cfg.Output.TruncateRawText},
		{"MAX_WORKERS", &cfg.Batch.MaxWorkers},
		{"SERVER_PORT", &cfg.Server.Port},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ENABLE_CACHING", &cfg.Cache.Enabled},
		{"REQUIRE_EMAIL", &cfg.Validation.RequireEmail},
		{"REQUIRE_PHONE", &cfg.Validation.RequirePhone},
		{"REQUIRE_EXPERIENCE", &cfg.Validation.RequireExperience},
		{"REQUIRE_EDUCATION", &cfg.Validation.RequireEducation},
		{"INCLUDE_RAW_TEXT", &cfg.Output.IncludeRawText},
		{"ENABLE_MULTIPROCESSING", &cfg.Batch.EnableMultiprocessing},
		{"EXTRACT_CERTIFICATIONS", &cfg.Extraction.Certifications},
		{"EXTRACT_PROJECTS", &cfg.Extraction.Projects},
		{"EXTRACT_LANGUAGES", &cfg.Extraction.Languages},
		{"DEBUG", &cfg.Debug},
	}
	for _, e := range bools {
		if err := envBool(e.key, e.dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("CACHE_DIR"); ok {
		cfg.Cache.Dir = v
	}
	if v, ok := lookup("CACHE_BACKEND"); ok {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("DEFAULT_REGION"); ok {
		cfg.Extraction.DefaultRegion = strings.ToUpper(v)
	}
	if v, ok := lookup("SERVER_HOST"); ok {
		cfg.Server.Host = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && strings.EqualFold(v, "debug") {
		cfg.Debug = true
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, key, v, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid %s%s=%q: expected boolean", EnvPrefix, key, v)
	}
	return nil
}
