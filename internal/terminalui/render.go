// Package terminalui 在终端打印最近几个月的排行预览
package terminalui

import (
	"fmt"
	"io"
	"strings"

	"stockrank/artifact"
	"stockrank/model"
)

// DefaultMonths 默认预览最近6个月
const DefaultMonths = 6

// Preview 预览内容
type Preview struct {
	Title    string
	Document *artifact.Document
	// Months 预览的月份数，0 表示 DefaultMonths
	Months int
	// NoColor 关闭涨跌着色
	NoColor bool
}

// Render 打印最近 Months 个月的榜单
func Render(w io.Writer, p Preview) {
	doc := p.Document
	if doc == nil {
		return
	}
	monthly, heading := pickMonthly(doc)
	n := p.Months
	if n <= 0 {
		n = DefaultMonths
	}

	line := strings.Repeat("═", 60)
	fmt.Fprintf(w, "╔%s\n", line)
	fmt.Fprintf(w, "║  %s  %s\n", p.Title, doc.UpdateTime)
	if doc.DataSource != "" {
		fmt.Fprintf(w, "║  数据来源: %s\n", doc.DataSource)
	}
	fmt.Fprintf(w, "╠%s\n", line)

	if monthly.Len() == 0 {
		fmt.Fprintln(w, "║  暂无数据")
		fmt.Fprintf(w, "╚%s\n", line)
		return
	}

	fmt.Fprintf(w, "║  【%s】\n", heading)
	for _, month := range lastMonths(monthly.Keys(), n) {
		entries, _ := monthly.Get(month)
		fmt.Fprintf(w, "╟─ %s\n", month)
		if len(entries) == 0 {
			fmt.Fprintln(w, "║     (无数据)")
			continue
		}
		for i, e := range entries {
			fmt.Fprintf(w, "║   %d. %s\n", i+1, p.formatEntry(e))
		}
	}
	fmt.Fprintf(w, "╚%s\n", line)
}

func pickMonthly(doc *artifact.Document) (*artifact.Monthly, string) {
	switch {
	case doc.MonthlyMonsters != nil:
		return doc.MonthlyMonsters, "月度涨幅榜"
	case doc.Top3PerMonth != nil:
		return doc.Top3PerMonth, "月度板块榜"
	case doc.Top3Stocks != nil:
		return doc.Top3Stocks, "月度个股榜"
	}
	return nil, ""
}

func lastMonths(keys []string, n int) []string {
	if len(keys) > n {
		return keys[len(keys)-n:]
	}
	return keys
}

func (p Preview) formatEntry(e model.RankedEntry) string {
	ret := fmt.Sprintf("%+7.2f%%", e.Return)
	if !p.NoColor {
		ret = colorByChange(e.Return) + ret + "\033[0m"
	}
	name := truncateName(e.Name, 8)
	if e.Label != model.LabelStock {
		return fmt.Sprintf("%-12s %s", name, ret)
	}

	s := fmt.Sprintf("%-8s %-10s %s", e.Code, name, ret)
	if e.Price != nil {
		s += fmt.Sprintf("  %8.2f", *e.Price)
	}
	if e.Theme != "" {
		s += "  " + e.Theme
	}
	return s
}

// colorByChange A股习惯：红涨绿跌
func colorByChange(change float64) string {
	if change > 0 {
		return "\033[31m"
	}
	if change < 0 {
		return "\033[32m"
	}
	return "\033[37m"
}

func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return name
}
