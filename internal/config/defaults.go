package config

// Default returns a config populated with every default value.
func Default() *Config {
	return &Config{
		Ingestion: IngestionConfig{MaxFileSizeMB: 10},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "cv_cache",
			Backend: "disk",
		},
		Validation: ValidationConfig{
			RequireEmail:      true,
			RequireExperience: true,
			RequireEducation:  true,
			MinSkillsCount:    1,
		},
		Extraction: ExtractionConfig{
			Certifications: true,
			Projects:       true,
			Languages:      true,
			DefaultRegion:  "US",
		},
		Output: OutputConfig{
			IncludeRawText:  true,
			TruncateRawText: 1000,
		},
		Batch: BatchConfig{
			BatchSize:  10,
			MaxWorkers: 4,
		},
		Server: ServerConfig{Host: "localhost", Port: 8080},
	}
}

// ApplyDefaults sets default values for any zero values in cfg that have no
// meaningful zero. Booleans are left alone since false is a valid setting.
func ApplyDefaults(cfg *Config) {
	if cfg.Ingestion.MaxFileSizeMB == 0 {
		cfg.Ingestion.MaxFileSizeMB = 10
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "cv_cache"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "disk"
	}
	if cfg.Extraction.DefaultRegion == "" {
		cfg.Extraction.DefaultRegion = "US"
	}
	if cfg.Batch.BatchSize == 0 {
		cfg.Batch.BatchSize = 10
	}
	if cfg.Batch.MaxWorkers == 0 {
		cfg.Batch.MaxWorkers = 4
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Watch.OutputDir == "" && len(cfg.Watch.Directories) > 0 {
		cfg.Watch.OutputDir = "cv_records"
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
