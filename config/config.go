package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockrank/model"
	"stockrank/trading"
)

//go:embed defaults.yaml
var defaultUniverse []byte

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	Server struct {
		Port      int    `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Fetch struct {
		Provider        string        `yaml:"provider"`
		MaxAttempts     int           `yaml:"max_attempts"`
		RetryDelay      time.Duration `yaml:"retry_delay"`
		Pace            time.Duration `yaml:"pace"`
		Timeout         time.Duration `yaml:"timeout"`
		Workers         int           `yaml:"workers"`
		BreakerFailures int           `yaml:"breaker_failures"`
	} `yaml:"fetch"`

	Ranking struct {
		TopK               int    `yaml:"top_k"`
		MinBars            int    `yaml:"min_bars"`
		Basis              string `yaml:"basis"`
		StartMonth         string `yaml:"start_month"`
		EndMonth           string `yaml:"end_month"`
		IncludeEmptyMonths *bool  `yaml:"include_empty_months"`
		TieBreak           string `yaml:"tie_break"`
		KlineDays          int    `yaml:"kline_days"`
		QueryBars          int    `yaml:"query_bars"`
		ThemesFile         string `yaml:"themes_file"`
	} `yaml:"ranking"`

	Universe struct {
		Stocks          []model.Entity `yaml:"stocks"`
		HotBoards       []string       `yaml:"hot_boards"`
		ActiveStocks    int            `yaml:"active_stocks"`
		MaxConstituents int            `yaml:"max_constituents"`
	} `yaml:"universe"`

	Refresh struct {
		Cron string   `yaml:"cron"`
		Jobs []string `yaml:"jobs"`
	} `yaml:"refresh"`
}

// Config 配置
type Config struct {
	// HTTP 服务端口
	Port int
	// 静态文件目录，为空时使用内嵌页面
	StaticDir string

	LogLevel  string
	LogFormat string

	// 产物输出目录
	OutputDir string

	// 个股排行与查询使用的数据源 tencent / eastmoney / sina
	Provider        string
	MaxAttempts     int
	RetryDelay      time.Duration
	Pace            time.Duration
	Timeout         time.Duration
	Workers         int
	BreakerFailures int

	TopK               int
	MinBars            int
	Basis              string
	StartMonth         string
	EndMonth           string
	IncludeEmptyMonths bool
	// 收益相同时的次序：insertion 按标的池顺序，code 按代码升序
	TieBreak           string
	KlineDays          int
	QueryBars          int
	ThemesFile         string

	// 个股标的池
	Stocks []model.Entity
	// 概念板块白名单（名称模糊匹配）
	HotBoards []string
	// 行业分析附带的活跃个股数
	ActiveStocks int
	// 每个行业取的成分股上限
	MaxConstituents int

	// 定时刷新（serve 模式），为空则不刷新
	RefreshCron string
	RefreshJobs []string
}

// DefaultConfig 默认配置，标的池来自内嵌的 defaults.yaml
func DefaultConfig() Config {
	cfg := Config{
		Port:            8080,
		LogLevel:        "info",
		LogFormat:       "console",
		OutputDir:       "data",
		Provider:        "tencent",
		MaxAttempts:     3,
		RetryDelay:      2 * time.Second,
		Pace:            100 * time.Millisecond,
		Timeout:         10 * time.Second,
		Workers:         4,
		BreakerFailures: 5,
		TopK:            3,
		MinBars:         2,
		Basis:           "open_to_close",
		TieBreak:        "insertion",
		StartMonth:      "2023-01",
		EndMonth:        trading.MonthKey(time.Now()),
		KlineDays:       800,
		QueryBars:       320,
		ActiveStocks:    80,
		MaxConstituents: 30,
		RefreshJobs:     []string{"monsters", "sectors", "industry-avg", "concepts"},
	}

	var y YAMLConfig
	if err := yaml.Unmarshal(defaultUniverse, &y); err != nil {
		panic(fmt.Sprintf("内置标的池损坏: %v", err))
	}
	cfg.Stocks = dedupe(y.Universe.Stocks)
	cfg.HotBoards = y.Universe.HotBoards
	return cfg
}

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var y YAMLConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg := DefaultConfig()
	apply(&cfg, &y)
	return &cfg, nil
}

func apply(cfg *Config, y *YAMLConfig) {
	setInt(&cfg.Port, y.Server.Port)
	setStr(&cfg.StaticDir, y.Server.StaticDir)
	setStr(&cfg.LogLevel, y.Log.Level)
	setStr(&cfg.LogFormat, y.Log.Format)
	setStr(&cfg.OutputDir, y.Output.Dir)

	setStr(&cfg.Provider, y.Fetch.Provider)
	setInt(&cfg.MaxAttempts, y.Fetch.MaxAttempts)
	setDur(&cfg.RetryDelay, y.Fetch.RetryDelay)
	setDur(&cfg.Pace, y.Fetch.Pace)
	setDur(&cfg.Timeout, y.Fetch.Timeout)
	setInt(&cfg.Workers, y.Fetch.Workers)
	setInt(&cfg.BreakerFailures, y.Fetch.BreakerFailures)

	setInt(&cfg.TopK, y.Ranking.TopK)
	setInt(&cfg.MinBars, y.Ranking.MinBars)
	setStr(&cfg.Basis, y.Ranking.Basis)
	setStr(&cfg.StartMonth, y.Ranking.StartMonth)
	setStr(&cfg.EndMonth, y.Ranking.EndMonth)
	if y.Ranking.IncludeEmptyMonths != nil {
		cfg.IncludeEmptyMonths = *y.Ranking.IncludeEmptyMonths
	}
	setStr(&cfg.TieBreak, y.Ranking.TieBreak)
	setInt(&cfg.KlineDays, y.Ranking.KlineDays)
	setInt(&cfg.QueryBars, y.Ranking.QueryBars)
	setStr(&cfg.ThemesFile, y.Ranking.ThemesFile)

	if len(y.Universe.Stocks) > 0 {
		cfg.Stocks = dedupe(y.Universe.Stocks)
	}
	if len(y.Universe.HotBoards) > 0 {
		cfg.HotBoards = y.Universe.HotBoards
	}
	setInt(&cfg.ActiveStocks, y.Universe.ActiveStocks)
	setInt(&cfg.MaxConstituents, y.Universe.MaxConstituents)

	setStr(&cfg.RefreshCron, y.Refresh.Cron)
	if len(y.Refresh.Jobs) > 0 {
		cfg.RefreshJobs = y.Refresh.Jobs
	}
}

// GetConfig 获取配置 (优先级: 环境变量 > 配置文件 > 默认值)。
// configPath 为空时尝试 ./config.yaml；同目录下的 .env 会先被加载。
func GetConfig(configPath string) (*Config, error) {
	_ = godotenv.Load() // .env 可选

	cfg := DefaultConfig()
	path := configPath
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("STOCKRANK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOCKRANK_PORT 无效: %w", err)
		}
		cfg.Port = port
	}
	setStr(&cfg.OutputDir, os.Getenv("STOCKRANK_OUTPUT_DIR"))
	setStr(&cfg.LogLevel, os.Getenv("STOCKRANK_LOG_LEVEL"))
	setStr(&cfg.LogFormat, os.Getenv("STOCKRANK_LOG_FORMAT"))
	setStr(&cfg.RefreshCron, os.Getenv("STOCKRANK_REFRESH_CRON"))
	return nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("端口无效: %d", c.Port))
	}
	switch c.Provider {
	case "tencent", "eastmoney", "sina":
	default:
		errs = append(errs, fmt.Errorf("未知的数据源: %s", c.Provider))
	}
	switch c.Basis {
	case "open_to_close", "close_to_close":
	default:
		errs = append(errs, fmt.Errorf("未知的收益口径: %s", c.Basis))
	}
	switch c.TieBreak {
	case "insertion", "code":
	default:
		errs = append(errs, fmt.Errorf("未知的排序方式: %s", c.TieBreak))
	}
	if _, err := trading.MonthRange(c.StartMonth, c.EndMonth); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers 至少为1: %d", c.Workers))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts 至少为1: %d", c.MaxAttempts))
	}
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k 至少为1: %d", c.TopK))
	}
	return errors.Join(errs...)
}

func dedupe(stocks []model.Entity) []model.Entity {
	seen := make(map[string]bool, len(stocks))
	out := make([]model.Entity, 0, len(stocks))
	for _, s := range stocks {
		code := strings.TrimSpace(s.Code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, model.Entity{Code: code, Name: strings.TrimSpace(s.Name)})
	}
	return out
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDur(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
