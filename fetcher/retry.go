package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// RetryPolicy 固定间隔重试
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy 最多3次，间隔2秒
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

// Permanent 判断错误是否不值得重试
func Permanent(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, gobreaker.ErrOpenState)
}

// Retry 执行 op，失败后等待 Delay 再试，共最多 MaxAttempts 次。
// 永久性错误立即返回；耗尽后返回最后一次的错误。
// onRetry 可为 nil，在每次重试前调用。
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error), onRetry func(attempt int, err error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		zero T
		err  error
	)
	for i := 1; i <= attempts; i++ {
		var v T
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}
		if Permanent(err) || ctx.Err() != nil || i == attempts {
			break
		}
		if onRetry != nil {
			onRetry(i, err)
		}
		if p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, ctx.Err()
			case <-t.C:
			}
		}
	}
	return zero, err
}
