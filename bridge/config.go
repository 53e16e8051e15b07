package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything the bridge server and the CLI share: where the
// SiYuan installation lives, where the history files go, and how to serve.
type Config struct {
	Port         int    // HTTP listen port
	SiyuanData   string // SiYuan data directory
	AVTable      string // attribute-view id of the trade table
	BaseCurrency string // reporting currency
	OutputDir    string // history files and the rendered chart
	AssetsDir    string // SiYuan assets directory, chart copies land here
	RefreshCron  string // cron expression with seconds field, empty disables
	LogLevel     string
	LogPretty    bool
}

// LoadConfig reads the environment, falling back to a .env file and then to
// defaults. The output directory is created so a first run has somewhere to
// write.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	data := getEnv("FOLIO_SIYUAN_DATA", "")
	cfg := Config{
		Port:         getEnvAsInt("FOLIO_PORT", 5000),
		SiyuanData:   data,
		AVTable:      getEnv("FOLIO_AV_TABLE", ""),
		BaseCurrency: getEnv("FOLIO_BASE_CCY", "CAD"),
		OutputDir:    getEnv("FOLIO_OUTPUT_DIR", filepath.Join(data, "storage", "petal", "portfolio-importer")),
		AssetsDir:    getEnv("FOLIO_ASSETS_DIR", filepath.Join(data, "assets")),
		RefreshCron:  getEnv("FOLIO_REFRESH_CRON", ""),
		LogLevel:     getEnv("FOLIO_LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("FOLIO_LOG_PRETTY", true),
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("could not create output directory %q: %w", cfg.OutputDir, err)
	}
	return cfg, nil
}

// HistoryPath is the unified history file, one row per symbol or sector
// slice per snapshot date.
func (c Config) HistoryPath() string {
	return filepath.Join(c.OutputDir, "portfolio_history_unified.csv")
}

// NewsPath is the pipe-separated news history file.
func (c Config) NewsPath() string {
	return filepath.Join(c.OutputDir, "portfolio_news_history.csv")
}

// ChartPath is where the rendered HTML report lands.
func (c Config) ChartPath() string {
	return filepath.Join(c.OutputDir, "portfolio_sectors_unified.html")
}

// AttributeViewPath is the SiYuan attribute-view export the trade journal
// is imported from.
func (c Config) AttributeViewPath() string {
	return filepath.Join(c.SiyuanData, "storage", "av", c.AVTable+".json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
