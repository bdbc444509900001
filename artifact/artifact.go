// Package artifact 定义分析产物文档并负责整文件读写
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockrank/model"
	"stockrank/ordered"
	"stockrank/ranking"
	"stockrank/trading"
)

// Returns 名称 -> 月份 -> 收益
type Returns = ordered.Map[*ordered.Map[float64]]

// Monthly 月份 -> 榜单
type Monthly = ordered.Map[[]model.RankedEntry]

// Document 一次运行产出的完整快照，字段顺序即输出顺序
type Document struct {
	UpdateTime      string                            `json:"update_time"`
	DataSource      string                            `json:"data_source,omitempty"`
	StockCount      int                               `json:"stock_count,omitempty"`
	IndustryReturns *Returns                          `json:"industry_returns,omitempty"`
	BoardReturns    *Returns                          `json:"board_returns,omitempty"`
	MonthlyMonsters *Monthly                          `json:"monthly_monsters,omitempty"`
	Top3PerMonth    *Monthly                          `json:"top3_per_month,omitempty"`
	Top3Stocks      *Monthly                          `json:"top3_stocks,omitempty"`
	MonthlyThemes   *ordered.Map[[]string]            `json:"monthly_themes,omitempty"`
	MonthlySummary  *ordered.Map[[]ranking.MonthStat] `json:"monthly_summary,omitempty"`
}

// New 创建带时间戳的空文档
func New(now time.Time, source string) *Document {
	return &Document{UpdateTime: trading.Timestamp(now), DataSource: source}
}

// Write 整体覆盖写入 path：先写同目录临时文件再 rename，不做增量合并
func Write(path string, doc *Document) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("序列化产物失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入产物失败: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("替换产物失败: %w", err)
	}
	return nil
}

// Read 读取并解析产物
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析产物失败: %w", err)
	}
	return &doc, nil
}

func ensureParentDir(path string) error {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil
	}
	dir := filepath.Dir(p)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
