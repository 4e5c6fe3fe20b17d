package config

// Default configuration values.
const (
	DefaultDatasetsDir = "datasets"
	DefaultLoader      = "csv"
	DefaultEncoding    = "utf-8"
	DefaultStoreType   = "sqlite"
	DefaultStorePath   = "chart_configs.db"
	DefaultUIPort      = 8742
	DefaultLogLevel    = "info"
)

// defaultMap feeds koanf's confmap provider; flags, env, and the config
// file all layer on top of it.
func defaultMap() map[string]any {
	return map[string]any{
		"datasets_dir": DefaultDatasetsDir,
		"loader":       DefaultLoader,
		"encoding":     DefaultEncoding,
		"store.type":   DefaultStoreType,
		"store.path":   DefaultStorePath,
		"store.port":   5432,
		"ui.port":      DefaultUIPort,
		"ui.watch":     true,
		"log_level":    DefaultLogLevel,
	}
}

// ApplyDefaults fills zero fields on a Config built without the loader,
// mainly for tests that construct configs by hand.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.DatasetsDir == "" {
		c.DatasetsDir = DefaultDatasetsDir
	}
	if c.Loader == "" {
		c.Loader = DefaultLoader
	}
	if c.Encoding == "" {
		c.Encoding = DefaultEncoding
	}
	if c.Store.Type == "" {
		c.Store.Type = DefaultStoreType
	}
	if c.Store.Type == "sqlite" && c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Store.Type == "postgres" && c.Store.Port == 0 {
		c.Store.Port = 5432
	}
	if c.UI.Port == 0 {
		c.UI.Port = DefaultUIPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
