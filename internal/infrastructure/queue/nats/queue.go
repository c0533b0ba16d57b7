package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/paperlens/originality/internal/core/ports"
	"github.com/paperlens/originality/internal/infrastructure/resilience"
)

// Queue carries scan requests to workers on requestSubject and emits
// completion events on completedSubject. Requests are load-balanced across
// workers through a queue group, so a document version is handled by at most
// one worker per delivery.
type Queue struct {
	conn             *nats.Conn
	requestSubject   string
	completedSubject string
	executor         *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, requestSubject, completedSubject string) (*Queue, error) {
	return NewWithOptions(url, requestSubject, completedSubject, Options{})
}

func NewWithOptions(url, requestSubject, completedSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	executor := options.ResilienceExecutor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), classifyNATSError)
	}

	conn, err := nats.Connect(
		url,
		nats.Name("originality-scanner"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:             conn,
		requestSubject:   requestSubject,
		completedSubject: completedSubject,
		executor:         executor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishScanRequest(ctx context.Context, request ports.ScanRequest) error {
	if request.EnqueuedAt.IsZero() {
		request.EnqueuedAt = time.Now()
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal scan request: %w", err)
	}
	return q.publish(ctx, q.requestSubject, payload)
}

func (q *Queue) PublishScanCompleted(ctx context.Context, scanID string) error {
	return q.publish(ctx, q.completedSubject, []byte(scanID))
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	err := q.executor.Execute(ctx, "nats.publish", func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	})
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeScanRequests blocks until ctx is canceled, handling requests as
// they arrive. Malformed payloads are logged and dropped rather than
// redelivered; there is no retry that would fix them.
func (q *Queue) SubscribeScanRequests(ctx context.Context, handler func(context.Context, ports.ScanRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.requestSubject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var request ports.ScanRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Printf("drop malformed scan request: %v", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, request); err != nil {
			log.Printf("worker handler error for subject=%s: %v", request.SubjectID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
