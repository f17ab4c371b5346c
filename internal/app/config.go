package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/envutil"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	HTTPAddr    string
	MetricsAddr string
	CORSOrigins []string

	ServiceName string
	Environment string
	Version     string

	// RunTemporalWorker starts the value growth worker in this process when
	// Temporal is configured.
	RunTemporalWorker bool

	Market services.MarketConfig
}

// marketFile is the optional MARKET_CONFIG_FILE layout. Money is written as
// strings so no precision is lost.
type marketFile struct {
	TeamInitialBalance string         `yaml:"team_initial_balance" toml:"team_initial_balance"`
	PlayerInitialValue string         `yaml:"player_initial_value" toml:"player_initial_value"`
	ValueIncreaseMin   int            `yaml:"value_increase_min" toml:"value_increase_min"`
	ValueIncreaseMax   int            `yaml:"value_increase_max" toml:"value_increase_max"`
	ListingsPerPage    int            `yaml:"transfer_listings_per_page" toml:"transfer_listings_per_page"`
	PlayersPerPage     int            `yaml:"players_per_page" toml:"players_per_page"`
	MaxPerPage         int            `yaml:"max_per_page" toml:"max_per_page"`
	LockTimeoutMS      int            `yaml:"transfer_lock_timeout_ms" toml:"transfer_lock_timeout_ms"`
	Positions          map[string]int `yaml:"positions" toml:"positions"`
}

var positionEnv = map[types.Position]string{
	types.PositionGoalkeeper: "SOCCER_POSITION_GOALKEEPER_COUNT",
	types.PositionDefender:   "SOCCER_POSITION_DEFENDER_COUNT",
	types.PositionMidfielder: "SOCCER_POSITION_MIDFIELDER_COUNT",
	types.PositionAttacker:   "SOCCER_POSITION_ATTACKER_COUNT",
}

// LoadConfig reads .env when present, then MARKET_CONFIG_FILE, then the
// environment. Environment variables win over the file.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env", "error", err)
	}

	market := services.DefaultMarketConfig()
	if path := strings.TrimSpace(envutil.String("MARKET_CONFIG_FILE", "")); path != "" {
		if err := applyMarketFile(&market, path); err != nil {
			return Config{}, err
		}
		log.Info("Loaded market config file", "path", path)
	}
	if err := applyMarketEnv(&market); err != nil {
		return Config{}, err
	}

	secret := envutil.String("JWT_SECRET_KEY", "")
	if secret == "" {
		secret = "defaultsecret"
		log.Warn("JWT_SECRET_KEY not set, using an insecure default")
	}

	return Config{
		JWTSecretKey:      secret,
		AccessTokenTTL:    envutil.Seconds("ACCESS_TOKEN_TTL", 86400),
		HTTPAddr:          envutil.String("HTTP_ADDR", ":8080"),
		MetricsAddr:       envutil.String("METRICS_ADDR", ":9090"),
		CORSOrigins:       splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		ServiceName:       envutil.String("OTEL_SERVICE_NAME", "transfermarket-api"),
		Environment:       envutil.String("APP_ENV", "development"),
		Version:           envutil.String("APP_VERSION", "dev"),
		RunTemporalWorker: envutil.Bool("TEMPORAL_WORKER_ENABLED", true),
		Market:            market,
	}, nil
}

func applyMarketFile(cfg *services.MarketConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read market config: %w", err)
	}
	var f marketFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	case ".toml":
		err = toml.Unmarshal(raw, &f)
	default:
		return fmt.Errorf("market config %q: unsupported extension", path)
	}
	if err != nil {
		return fmt.Errorf("parse market config %q: %w", path, err)
	}

	if f.TeamInitialBalance != "" {
		if cfg.TeamInitialBalance, err = decimal.NewFromString(f.TeamInitialBalance); err != nil {
			return fmt.Errorf("team_initial_balance: %w", err)
		}
	}
	if f.PlayerInitialValue != "" {
		if cfg.PlayerInitialValue, err = decimal.NewFromString(f.PlayerInitialValue); err != nil {
			return fmt.Errorf("player_initial_value: %w", err)
		}
	}
	setIfPositive(&cfg.ValueIncreaseMin, f.ValueIncreaseMin)
	setIfPositive(&cfg.ValueIncreaseMax, f.ValueIncreaseMax)
	setIfPositive(&cfg.ListingsPerPage, f.ListingsPerPage)
	setIfPositive(&cfg.PlayersPerPage, f.PlayersPerPage)
	setIfPositive(&cfg.MaxPerPage, f.MaxPerPage)
	if f.LockTimeoutMS > 0 {
		cfg.LockTimeout = time.Duration(f.LockTimeoutMS) * time.Millisecond
	}
	if len(f.Positions) > 0 {
		positions := make(map[types.Position]int, len(cfg.Positions))
		for k, v := range cfg.Positions {
			positions[k] = v
		}
		for name, n := range f.Positions {
			pos := types.Position(strings.ToLower(strings.TrimSpace(name)))
			if !pos.Valid() {
				return fmt.Errorf("positions: unknown position %q", name)
			}
			if n < 0 {
				return fmt.Errorf("positions: negative count for %q", name)
			}
			positions[pos] = n
		}
		cfg.Positions = positions
	}
	return nil
}

func applyMarketEnv(cfg *services.MarketConfig) error {
	var err error
	if v := envutil.String("SOCCER_TEAM_INITIAL_BALANCE", ""); v != "" {
		if cfg.TeamInitialBalance, err = decimal.NewFromString(v); err != nil {
			return fmt.Errorf("SOCCER_TEAM_INITIAL_BALANCE: %w", err)
		}
	}
	if v := envutil.String("SOCCER_PLAYER_INITIAL_VALUE", ""); v != "" {
		if cfg.PlayerInitialValue, err = decimal.NewFromString(v); err != nil {
			return fmt.Errorf("SOCCER_PLAYER_INITIAL_VALUE: %w", err)
		}
	}
	cfg.ValueIncreaseMin = envutil.Int("SOCCER_VALUE_INCREASE_MIN", cfg.ValueIncreaseMin)
	cfg.ValueIncreaseMax = envutil.Int("SOCCER_VALUE_INCREASE_MAX", cfg.ValueIncreaseMax)
	cfg.ListingsPerPage = envutil.Int("TRANSFER_LISTINGS_PER_PAGE", cfg.ListingsPerPage)
	cfg.PlayersPerPage = envutil.Int("PLAYERS_PER_PAGE", cfg.PlayersPerPage)
	cfg.MaxPerPage = envutil.Int("MAX_PER_PAGE", cfg.MaxPerPage)
	cfg.LockTimeout = envutil.Millis("TRANSFER_LOCK_TIMEOUT_MS", int(cfg.LockTimeout.Milliseconds()))

	positions := make(map[types.Position]int, len(cfg.Positions))
	for k, v := range cfg.Positions {
		positions[k] = v
	}
	for pos, name := range positionEnv {
		positions[pos] = envutil.Int(name, positions[pos])
	}
	cfg.Positions = positions
	return nil
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
