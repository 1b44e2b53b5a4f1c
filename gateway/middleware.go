package gateway

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// WithTimeout bounds every Send; the provider contract has no timeout of its own.
func WithTimeout(next Gateway, d time.Duration) Gateway {
	if d <= 0 {
		return next
	}
	return &timeout{next: next, d: d}
}

type timeout struct {
	next Gateway
	d    time.Duration
}

func (t *timeout) Name() string { return t.next.Name() }

func (t *timeout) Send(ctx context.Context, prompt, imageBase64 string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	out, err := t.next.Send(ctx, prompt, imageBase64)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var gwErr *GatewayError
		if !errors.As(err, &gwErr) {
			err = &GatewayError{Provider: t.next.Name(), Message: "model request timed out after " + t.d.String(), Err: err}
		}
	}
	return out, err
}

// WithLogging logs request sizes and failures. Image payloads are never logged.
func WithLogging(next Gateway, log *zap.Logger) Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &logging{next: next, log: log}
}

type logging struct {
	next Gateway
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Send(ctx context.Context, prompt, imageBase64 string) (string, error) {
	start := time.Now()
	out, err := l.next.Send(ctx, prompt, imageBase64)
	fields := []zap.Field{
		zap.String("provider", l.next.Name()),
		zap.Int("promptBytes", len(prompt)),
		zap.Bool("image", imageBase64 != ""),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		l.log.Warn("model request failed", append(fields, zap.Error(err))...)
		return out, err
	}
	l.log.Debug("model request", append(fields, zap.Int("responseBytes", len(out)))...)
	return out, nil
}
