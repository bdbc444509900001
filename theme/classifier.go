// Package theme 根据名称关键词（以及代码前缀）给标的打主题标签
package theme

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stockrank/model"
	"stockrank/ordered"
)

//go:embed themes.yaml
var defaultTable []byte

// DefaultFallback 全部规则未命中时的标签
const DefaultFallback = "其他"

// Rule 一个主题及其关键词
type Rule struct {
	Theme    string   `yaml:"theme"`
	Keywords []string `yaml:"keywords"`
}

// PrefixRule 代码前缀兜底规则
type PrefixRule struct {
	Prefix string `yaml:"prefix"`
	Label  string `yaml:"label"`
}

// Table 主题表，Themes 的顺序即匹配优先级
type Table struct {
	Themes   []Rule       `yaml:"themes"`
	Prefixes []PrefixRule `yaml:"prefixes"`
	Fallback string       `yaml:"fallback"`
}

// Classifier 主题分类器，只读，可并发使用
type Classifier struct {
	table Table
}

// New 校验主题表并创建分类器
func New(t Table) (*Classifier, error) {
	for i, r := range t.Themes {
		if strings.TrimSpace(r.Theme) == "" {
			return nil, fmt.Errorf("第 %d 条主题名称为空", i+1)
		}
	}
	for i, p := range t.Prefixes {
		if p.Prefix == "" || p.Label == "" {
			return nil, fmt.Errorf("第 %d 条前缀规则不完整", i+1)
		}
	}
	if t.Fallback == "" {
		t.Fallback = DefaultFallback
	}
	return &Classifier{table: t}, nil
}

// Parse 从 YAML 解析主题表
func Parse(data []byte) (*Classifier, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析主题表失败: %w", err)
	}
	return New(t)
}

// Load 从文件加载主题表；path 为空时使用内置表
func Load(path string) (*Classifier, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取主题表失败: %w", err)
	}
	return Parse(data)
}

// Default 内置主题表
func Default() *Classifier {
	c, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify 返回第一个关键词命中名称的主题；都未命中时按代码前缀兜底
func (c *Classifier) Classify(name, code string) string {
	for _, r := range c.table.Themes {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(name, kw) {
				return r.Theme
			}
		}
	}
	for _, p := range c.table.Prefixes {
		if strings.HasPrefix(code, p.Prefix) {
			return p.Label
		}
	}
	return c.table.Fallback
}

// Decorate 为每月榜单中的个股条目填充主题
func (c *Classifier) Decorate(ranked *ordered.Map[[]model.RankedEntry]) {
	ranked.Range(func(_ string, entries []model.RankedEntry) bool {
		for i := range entries {
			if entries[i].Label == model.LabelStock {
				entries[i].Theme = c.Classify(entries[i].Name, entries[i].Code)
			}
		}
		return true
	})
}

// MonthlyThemes 每月榜单对应的主题列表，顺序与榜单一致
func MonthlyThemes(ranked *ordered.Map[[]model.RankedEntry]) *ordered.Map[[]string] {
	out := ordered.New[[]string]()
	ranked.Range(func(month string, entries []model.RankedEntry) bool {
		themes := make([]string, 0, len(entries))
		for _, e := range entries {
			themes = append(themes, e.Theme)
		}
		out.Set(month, themes)
		return true
	})
	return out
}
