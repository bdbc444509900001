package fetcher

import "strings"

// Market 交易所
type Market struct {
	Prefix string // sh / sz
	Name   string // 上海 / 深圳 / 未知
}

// ResolveSymbol 根据代码首位推断市场：6 开头上海，0/3 开头深圳，其余按上海处理并标记未知。
// 已带 sh/sz 前缀的代码原样返回。
func ResolveSymbol(code string) (symbol string, market Market) {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "sh") && len(code) > 2:
		return code, Market{Prefix: "sh", Name: "上海"}
	case strings.HasPrefix(code, "sz") && len(code) > 2:
		return code, Market{Prefix: "sz", Name: "深圳"}
	case strings.HasPrefix(code, "6"):
		return "sh" + code, Market{Prefix: "sh", Name: "上海"}
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
		return "sz" + code, Market{Prefix: "sz", Name: "深圳"}
	default:
		return "sh" + code, Market{Prefix: "sh", Name: "未知"}
	}
}

// BareCode 去掉市场前缀
func BareCode(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if len(c) > 2 && (strings.HasPrefix(c, "sh") || strings.HasPrefix(c, "sz")) {
		return c[2:]
	}
	return c
}

// Secid 东方财富 secid：板块 90.BKxxxx，沪市 1.xxxxxx，深市 0.xxxxxx
func Secid(code string) string {
	c := strings.TrimSpace(code)
	if strings.HasPrefix(strings.ToUpper(c), "BK") {
		return "90." + strings.ToUpper(c)
	}
	bare := BareCode(c)
	if _, m := ResolveSymbol(c); m.Prefix == "sh" {
		return "1." + bare
	}
	return "0." + bare
}
