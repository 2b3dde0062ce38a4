package config

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/karte/data/db/documents.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/karte/data/indices/bleve"
	}
	if cfg.Engine.DuplicateThreshold == 0 {
		cfg.Engine.DuplicateThreshold = 0.85
	}
	if cfg.Engine.SummaryRatio == 0 {
		cfg.Engine.SummaryRatio = 0.2
	}
	if cfg.Engine.MaxSummarySentences == 0 {
		cfg.Engine.MaxSummarySentences = 500
	}
	if cfg.Engine.MaxDocumentBytes == 0 {
		cfg.Engine.MaxDocumentBytes = 2 << 20
	}
	if cfg.Engine.ChangePercentThreshold == 0 {
		cfg.Engine.ChangePercentThreshold = 10.0
	}
	if cfg.Engine.AdherenceGapDays == 0 {
		cfg.Engine.AdherenceGapDays = 45.0
	}
	if cfg.Intake.Extensions == nil {
		cfg.Intake.Extensions = []string{".txt", ".md", ".pdf"}
	}
}
