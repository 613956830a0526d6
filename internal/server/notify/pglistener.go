package notify

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/worklogger/internal/logging"
)

// Channel is the NOTIFY channel of the work_logs trigger.
const Channel = "work_logs_changes"

type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, dsn string) (notificationConn, error) {
	return pgx.Connect(ctx, dsn)
}

// PGListener holds a dedicated connection LISTENing on Channel and publishes
// every notification to the broker.
type PGListener struct {
	dsn     string
	broker  *Broker
	logger  logging.Logger
	metrics *Metrics

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func NewPGListener(dsn string, broker *Broker, logger logging.Logger) *PGListener {
	return &PGListener{
		dsn:            dsn,
		broker:         broker,
		logger:         logger.With("module", "pglistener"),
		metrics:        broker.metrics,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
	}
}

// Run listens until ctx is done, reconnecting with backoff. After every
// reconnect all subscriptions are dropped: notifications raised while the
// connection was down are lost.
func (l *PGListener) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.InitialBackoff
	b.MaxInterval = l.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	first := true
	for {
		conn, err := l.listen(ctx)
		if err == nil {
			if !first {
				l.metrics.reconnects.Inc()
				l.broker.DropAll()
			}
			first = false
			b.Reset()
			l.logger.Info(ctx, "listening", "channel", Channel)

			err = l.consume(ctx, conn)
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = conn.Close(closeCtx)
			cancel()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		d := b.NextBackOff()
		l.logger.Warn(ctx, "change listener down", "error", err, "retry_in", d)
		if !sleepCtx(ctx, d) {
			return ctx.Err()
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (l *PGListener) listen(ctx context.Context) (notificationConn, error) {
	conn, err := connect(ctx, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}
	return conn, nil
}

func (l *PGListener) consume(ctx context.Context, conn notificationConn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := decodeEvent([]byte(n.Payload))
		if err != nil {
			l.logger.Warn(ctx, "bad notification", "error", err)
			continue
		}
		l.broker.Publish(ev)
	}
}
