package pipeline

import (
	"context"
	"fmt"
	"strings"

	"stockrank/artifact"
	"stockrank/fetcher"
	"stockrank/kline"
	"stockrank/model"
	"stockrank/ranking"
	"stockrank/theme"
)

// monstersJob 个股月度涨幅榜（妖股）
type monstersJob struct{ r *Runner }

func (j *monstersJob) Name() string   { return "monsters" }
func (j *monstersJob) Output() string { return "monster_stocks.json" }

func (j *monstersJob) Build(ctx context.Context) (*artifact.Document, int, error) {
	r := j.r
	stocks := r.set.Stocks
	p := r.deps.Stocks
	if p == nil {
		return nil, 0, fmt.Errorf("未配置个股数据源")
	}

	table, err := r.collect(ctx, j.Name(), stocks, func(ctx context.Context, e model.Entity) ([]model.DailyBar, error) {
		return p.FetchDailyBars(ctx, e.Code, r.stockRequest())
	})
	if err != nil {
		return nil, 0, err
	}
	if table.Len() == 0 {
		return nil, 0, ErrNoData
	}

	ranked := r.rank(j.Name(), table, ranking.Options{})
	r.deps.Themes.Decorate(ranked)

	doc := artifact.New(r.deps.Now(), fmt.Sprintf("%s历史K线统计（%d只股票）", p.Source(), len(stocks)))
	doc.StockCount = len(stocks)
	doc.MonthlyMonsters = ranked
	doc.MonthlyThemes = theme.MonthlyThemes(ranked)
	return doc, table.Len(), nil
}

// sectorsJob 行业板块月度表现
type sectorsJob struct{ r *Runner }

func (j *sectorsJob) Name() string   { return "sectors" }
func (j *sectorsJob) Output() string { return "sector_analysis.json" }

func (j *sectorsJob) Build(ctx context.Context) (*artifact.Document, int, error) {
	r := j.r
	b := r.deps.Boards
	if b == nil {
		return nil, 0, fmt.Errorf("未配置板块数据源")
	}

	boards, err := b.ListBoards(ctx, fetcher.BoardIndustry)
	if err != nil {
		return nil, 0, fmt.Errorf("获取行业列表失败: %w", err)
	}
	table, err := r.collect(ctx, j.Name(), boards, r.boardBars)
	if err != nil {
		return nil, 0, err
	}
	if table.Len() == 0 {
		return nil, 0, ErrNoData
	}

	doc := artifact.New(r.deps.Now(), b.Source()+"行业板块")
	doc.IndustryReturns = table.ByName()
	doc.Top3PerMonth = r.rank(j.Name(), table, ranking.Options{Label: model.LabelIndustry})
	doc.MonthlySummary = ranking.Summarize(table, 2, 5)

	// 活跃个股榜为附加信息，失败不影响行业结果
	if r.set.ActiveStocks > 0 {
		if stocks, err := j.activeStocks(ctx); err != nil {
			r.deps.Log.Warn().Err(err).Str("job", j.Name()).Msg("活跃个股榜生成失败")
		} else {
			doc.Top3Stocks = stocks
		}
	}
	return doc, table.Len(), nil
}

func (j *sectorsJob) activeStocks(ctx context.Context) (*artifact.Monthly, error) {
	r := j.r
	active, err := r.deps.Boards.ListActiveStocks(ctx, r.set.ActiveStocks)
	if err != nil {
		return nil, err
	}
	table, err := r.collect(ctx, j.Name(), active, r.boardBars)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, ErrNoData
	}
	return r.rank(j.Name(), table, ranking.Options{WithPrice: true}), nil
}

// industryAvgJob 用行业成分股收益的均值代表行业
type industryAvgJob struct{ r *Runner }

func (j *industryAvgJob) Name() string   { return "industry-avg" }
func (j *industryAvgJob) Output() string { return "industry_avg_analysis.json" }

func (j *industryAvgJob) Build(ctx context.Context) (*artifact.Document, int, error) {
	r := j.r
	b := r.deps.Boards
	if b == nil {
		return nil, 0, fmt.Errorf("未配置板块数据源")
	}

	boards, err := b.ListBoards(ctx, fetcher.BoardIndustry)
	if err != nil {
		return nil, 0, fmt.Errorf("获取行业列表失败: %w", err)
	}

	members := make([][]model.Entity, len(boards))
	var universe []model.Entity
	seen := make(map[string]bool)
	for i, board := range boards {
		list, err := b.ListConstituents(ctx, board.Code, r.set.MaxConstituents)
		if err != nil {
			r.deps.Observer.EntityFetched(j.Name(), board, 0, err)
			continue
		}
		members[i] = list
		for _, s := range list {
			if !seen[s.Code] {
				seen[s.Code] = true
				universe = append(universe, s)
			}
		}
	}
	if len(universe) == 0 {
		return nil, 0, ErrNoData
	}

	stocks, err := r.collect(ctx, j.Name(), universe, r.boardBars)
	if err != nil {
		return nil, 0, err
	}
	months := stocks.Months()

	table := ranking.NewTable()
	for i, board := range boards {
		var rs []kline.MonthlyReturn
		for _, month := range months {
			var rets []float64
			for _, s := range members[i] {
				if mr, ok := stocks.Return(s.Code, month); ok {
					rets = append(rets, mr.Return)
				}
			}
			if avg, n, ok := r.set.Outlier.Average(rets); ok {
				rs = append(rs, kline.MonthlyReturn{Month: month, Return: avg, Bars: n})
			}
		}
		table.Add(board, rs)
	}
	if table.Len() == 0 {
		return nil, 0, ErrNoData
	}

	doc := artifact.New(r.deps.Now(), b.Source()+"行业成分股均值")
	doc.IndustryReturns = table.ByName()
	doc.Top3PerMonth = r.rank(j.Name(), table, ranking.Options{Label: model.LabelIndustry})
	return doc, table.Len(), nil
}

// conceptsJob 热门概念板块月度表现
type conceptsJob struct{ r *Runner }

func (j *conceptsJob) Name() string   { return "concepts" }
func (j *conceptsJob) Output() string { return "concept_analysis.json" }

func (j *conceptsJob) Build(ctx context.Context) (*artifact.Document, int, error) {
	r := j.r
	b := r.deps.Boards
	if b == nil {
		return nil, 0, fmt.Errorf("未配置板块数据源")
	}

	all, err := b.ListBoards(ctx, fetcher.BoardConcept)
	if err != nil {
		return nil, 0, fmt.Errorf("获取概念板块列表失败: %w", err)
	}
	boards := MatchHotBoards(all, r.set.HotBoards)
	if len(boards) == 0 {
		return nil, 0, ErrNoData
	}

	table, err := r.collect(ctx, j.Name(), boards, r.boardBars)
	if err != nil {
		return nil, 0, err
	}
	if table.Len() == 0 {
		return nil, 0, ErrNoData
	}

	doc := artifact.New(r.deps.Now(), b.Source()+"概念板块")
	doc.BoardReturns = table.ByName()
	doc.Top3PerMonth = r.rank(j.Name(), table, ranking.Options{Label: model.LabelBoard})
	return doc, table.Len(), nil
}

// MatchHotBoards 保留名称与任一热门名互相包含的板块；hot 为空时全部保留
func MatchHotBoards(boards []model.Entity, hot []string) []model.Entity {
	if len(hot) == 0 {
		return boards
	}
	var out []model.Entity
	for _, b := range boards {
		if b.Name == "" {
			continue
		}
		for _, h := range hot {
			if h == "" {
				continue
			}
			if strings.Contains(b.Name, h) || strings.Contains(h, b.Name) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

func (r *Runner) boardBars(ctx context.Context, e model.Entity) ([]model.DailyBar, error) {
	return r.deps.Boards.FetchDailyBars(ctx, e.Code, r.boardRange())
}
