// Package besteffort выполняет вспомогательные вызовы, ошибка которых
// не должна прерывать основной сценарий.
package besteffort

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
)

// Do вызывает fn и возвращает её результат и true при успехе.
// Ошибка и паника логируются и превращаются в нулевое значение и false.
func Do[T any](ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (res T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("best-effort call panicked", sl.Op(op), slog.String("panic", fmt.Sprint(r)))
			var zero T
			res, ok = zero, false
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		log.Warn("best-effort call failed", sl.Op(op), sl.Err(err))
		var zero T
		return zero, false
	}
	return v, true
}

// Run то же, что Do, для вызовов без результата.
func Run(ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) error) bool {
	_, ok := Do(ctx, log, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return ok
}

// DoWithin то же, что Do, но ждёт результат не дольше timeout, даже если fn
// не реагирует на отмену контекста. Опоздавший результат отбрасывается.
// При timeout <= 0 ожидание не ограничивается.
func DoWithin[T any](ctx context.Context, log *slog.Logger, op string, timeout time.Duration,
	fn func(ctx context.Context) (T, error)) (T, bool) {
	if timeout <= 0 {
		return Do(ctx, log, op, fn)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v  T
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok := Do(ctx, log, op, fn)
		done <- result{v: v, ok: ok}
	}()

	select {
	case r := <-done:
		return r.v, r.ok
	case <-ctx.Done():
		log.Warn("best-effort call timed out", sl.Op(op), slog.Duration("timeout", timeout), sl.Err(ctx.Err()))
		var zero T
		return zero, false
	}
}
