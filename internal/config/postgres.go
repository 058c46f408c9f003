package config

// PostgresConfig holds the grade archive connection. An empty Url
// disables archiving entirely.
type PostgresConfig struct {
	Url string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url: getEnv("DATABASE_URL", ""),
	}
}

func (c *PostgresConfig) Enabled() bool {
	return c.Url != ""
}
