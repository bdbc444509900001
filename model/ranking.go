package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntryLabel 决定排行条目在产物中的字段形态
type EntryLabel string

const (
	LabelStock    EntryLabel = ""         // {code, name, return, theme?, price?}
	LabelIndustry EntryLabel = "industry" // {industry, return}
	LabelBoard    EntryLabel = "board"    // {board, return}
)

// RankedEntry 某月 Top-K 榜单中的一项
type RankedEntry struct {
	Code   string
	Name   string
	Return float64
	Theme  string   // 可选，由主题分类器填充
	Price  *float64 // 可选，参考价（月末收盘）
	Label  EntryLabel
}

// MarshalJSON 按固定字段顺序输出，保证产物 diff 稳定
func (e RankedEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if e.Label != LabelStock {
		writeField(&buf, string(e.Label), e.Name, true)
		writeField(&buf, "return", e.Return, false)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	writeField(&buf, "code", e.Code, true)
	writeField(&buf, "name", e.Name, false)
	writeField(&buf, "return", e.Return, false)
	if e.Theme != "" {
		writeField(&buf, "theme", e.Theme, false)
	}
	if e.Price != nil {
		writeField(&buf, "price", *e.Price, false)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, v any, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	val, _ := json.Marshal(v)
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
}

// UnmarshalJSON 根据出现的键识别条目形态
func (e *RankedEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = RankedEntry{}

	if r, ok := raw["return"]; ok {
		if err := json.Unmarshal(r, &e.Return); err != nil {
			return fmt.Errorf("return: %w", err)
		}
	}
	for _, label := range []EntryLabel{LabelIndustry, LabelBoard} {
		if v, ok := raw[string(label)]; ok {
			e.Label = label
			return json.Unmarshal(v, &e.Name)
		}
	}

	fields := map[string]*string{"code": &e.Code, "name": &e.Name, "theme": &e.Theme}
	for k, dst := range fields {
		if v, ok := raw[k]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
	}
	if v, ok := raw["price"]; ok {
		var p float64
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		e.Price = &p
	}
	return nil
}
