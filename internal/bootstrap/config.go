package bootstrap

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"nogo/internal/usecase/search"
)

type Config struct {
	LocalPort       int           `mapstructure:"LOCAL_PORT"`
	RemotePorts     []int         `mapstructure:"REMOTE_PORTS"`
	HttpPort        int           `mapstructure:"HTTP_PORT"`
	LocalCors       bool          `mapstructure:"LOCAL_CORS"`
	TurnTimeout     time.Duration `mapstructure:"TURN_TIMEOUT"`
	BoardSize       int           `mapstructure:"BOARD_SIZE"`
	TimeoutLeniency time.Duration `mapstructure:"TIMEOUT_LENIENCY"`
	WriterIdle      time.Duration `mapstructure:"WRITER_IDLE"`
	DialTimeout     time.Duration `mapstructure:"DIAL_TIMEOUT"`

	SearchIterations  int           `mapstructure:"SEARCH_ITERATIONS"`
	SearchDuration    time.Duration `mapstructure:"SEARCH_DURATION"`
	SearchCParam      float64       `mapstructure:"SEARCH_C_PARAM"`
	SearchNoiseAlpha  float64       `mapstructure:"SEARCH_NOISE_ALPHA"`
	SearchNoiseWeight float64       `mapstructure:"SEARCH_NOISE_WEIGHT"`

	Oracle          string `mapstructure:"ORACLE"`
	RolloutPlayouts int    `mapstructure:"ROLLOUT_PLAYOUTS"`
	EvaluatorAddr   string `mapstructure:"EVALUATOR_ADDR"`
	EvaluatorPort   int    `mapstructure:"EVALUATOR_PORT"`
	EvaluatorCache  int    `mapstructure:"EVALUATOR_CACHE"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogDevelopment bool   `mapstructure:"LOG_DEVELOPMENT"`
}

var defaults = map[string]any{
	"LOCAL_PORT":          5000,
	"REMOTE_PORTS":        []int{5001},
	"HTTP_PORT":           8080,
	"LOCAL_CORS":          false,
	"TURN_TIMEOUT":        30 * time.Second,
	"BOARD_SIZE":          9,
	"TIMEOUT_LENIENCY":    270 * time.Millisecond,
	"WRITER_IDLE":         30 * time.Second,
	"DIAL_TIMEOUT":        5 * time.Second,
	"SEARCH_ITERATIONS":   0,
	"SEARCH_DURATION":     1500 * time.Millisecond,
	"SEARCH_C_PARAM":      1.0,
	"SEARCH_NOISE_ALPHA":  0.3,
	"SEARCH_NOISE_WEIGHT": 0.0,
	"ORACLE":              "heuristic",
	"ROLLOUT_PLAYOUTS":    8,
	"EVALUATOR_ADDR":      "localhost:8082",
	"EVALUATOR_PORT":      8082,
	"EVALUATOR_CACHE":     100000,
	"LOG_LEVEL":           "info",
	"LOG_DEVELOPMENT":     false,
}

// Setup reads cfgPath when it exists and lets environment variables
// override any key.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if !strings.Contains(cfgPath, ".") || strings.HasSuffix(cfgPath, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Search() search.Config {
	return search.Config{
		Iterations:  c.SearchIterations,
		Duration:    c.SearchDuration,
		C:           c.SearchCParam,
		NoiseAlpha:  c.SearchNoiseAlpha,
		NoiseWeight: c.SearchNoiseWeight,
	}
}
