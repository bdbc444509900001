package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSymbol(t *testing.T) {
	cases := []struct {
		code, symbol, market string
	}{
		{"600519", "sh600519", "上海"},
		{"000001", "sz000001", "深圳"},
		{"300750", "sz300750", "深圳"},
		{"830799", "sh830799", "未知"},
		{"sz002230", "sz002230", "深圳"},
		{" SH688256 ", "sh688256", "上海"},
	}
	for _, c := range cases {
		symbol, m := ResolveSymbol(c.code)
		assert.Equal(t, c.symbol, symbol, c.code)
		assert.Equal(t, c.market, m.Name, c.code)
	}
}

func TestSecid(t *testing.T) {
	assert.Equal(t, "1.600519", Secid("600519"))
	assert.Equal(t, "0.000001", Secid("000001"))
	assert.Equal(t, "0.300750", Secid("sz300750"))
	assert.Equal(t, "90.BK0477", Secid("bk0477"))
}

func TestBareCode(t *testing.T) {
	assert.Equal(t, "600519", BareCode("sh600519"))
	assert.Equal(t, "000001", BareCode("000001"))
}
