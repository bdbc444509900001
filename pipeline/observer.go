package pipeline

import (
	"github.com/rs/zerolog"

	"stockrank/model"
)

// Observer 进度回调。会在多个 worker 中并发调用，实现需自行保证并发安全
type Observer interface {
	// EntityFetched 单个标的处理完成；err 非空表示该标的被跳过
	EntityFetched(job string, e model.Entity, months int, err error)
	// MonthRanked 某月榜单生成
	MonthRanked(job, month string, entries []model.RankedEntry)
}

// Nop 不做任何事
type Nop struct{}

func (Nop) EntityFetched(string, model.Entity, int, error)     {}
func (Nop) MonthRanked(string, string, []model.RankedEntry) {}

// LogObserver 把进度写入日志
type LogObserver struct {
	Log zerolog.Logger
}

func (o LogObserver) EntityFetched(job string, e model.Entity, months int, err error) {
	if err != nil {
		o.Log.Warn().Err(err).Str("job", job).Str("code", e.Code).Str("name", e.Name).Msg("获取失败，跳过")
		return
	}
	o.Log.Debug().Str("job", job).Str("code", e.Code).Str("name", e.Name).Int("months", months).Msg("获取完成")
}

func (o LogObserver) MonthRanked(job, month string, entries []model.RankedEntry) {
	ev := o.Log.Debug().Str("job", job).Str("month", month).Int("count", len(entries))
	if len(entries) > 0 {
		ev = ev.Str("top1", entries[0].Name).Float64("return", entries[0].Return)
	}
	ev.Msg("月度排名")
}
