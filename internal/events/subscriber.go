package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type Config struct {
	URL           string        // e.g. "nats://nats:4222"
	SubjectPrefix string        // subjects are <prefix>.attempts and <prefix>.revisions
	Queue         string        // queue group shared by all replicas
	Timeout       time.Duration // per-message processing budget
}

func (c Config) withDefaults() Config {
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "intelligence"
	}
	if c.Queue == "" {
		c.Queue = "intelligence-engine"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.SubjectPrefix = strings.TrimSuffix(c.SubjectPrefix, ".")
	return c
}

func (c Config) AttemptsSubject() string { return c.SubjectPrefix + ".attempts" }
func (c Config) RevisionsSubject() string { return c.SubjectPrefix + ".revisions" }

// Connect dials NATS with unlimited reconnects.
func Connect(url string, log *logger.Logger) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("intelligence-engine"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

type Subscriber struct {
	conn    *nats.Conn
	cfg     Config
	handler *Handler
	log     *logger.Logger
	metrics *observability.Metrics

	mu   sync.Mutex
	subs []*nats.Subscription
	wg   sync.WaitGroup
}

func NewSubscriber(conn *nats.Conn, cfg Config, handler *Handler, log *logger.Logger, metrics *observability.Metrics) *Subscriber {
	return &Subscriber{
		conn:    conn,
		cfg:     cfg.withDefaults(),
		handler: handler,
		log:     log.With("service", "EventSubscriber"),
		metrics: metrics,
	}
}

// Start subscribes both subjects. Messages are processed until ctx is
// cancelled or Close is called.
func (s *Subscriber) Start(ctx context.Context) error {
	routes := map[string]func(context.Context, []byte) error{
		s.cfg.AttemptsSubject():  s.handler.HandleAttempts,
		s.cfg.RevisionsSubject(): s.handler.HandleRevision,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for subject, fn := range routes {
		sub, err := s.conn.QueueSubscribe(subject, s.cfg.Queue, s.dispatch(ctx, subject, fn))
		if err != nil {
			s.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
		s.log.Info("subscribed", "subject", subject, "queue", s.cfg.Queue)
	}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, subject string, fn func(context.Context, []byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		s.wg.Add(1)
		defer s.wg.Done()

		mctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		sctx, span := observability.StartSpan(mctx, "events."+subject)
		err := fn(sctx, msg.Data)
		observability.EndSpan(span, err)

		switch {
		case err == nil:
			s.metrics.ObserveEvent(subject, "ok")
		case errors.Is(err, ErrMalformed), errors.Is(err, apierr.ErrInvalidArgument):
			s.metrics.ObserveEvent(subject, "malformed")
			s.log.Warn("dropping malformed event", "subject", subject, "error", err)
		default:
			s.metrics.ObserveEvent(subject, "error")
			s.log.Error("event handling failed", "subject", subject, "error", err)
		}
	}
}

// Close unsubscribes and waits for in-flight messages.
func (s *Subscriber) Close() {
	s.mu.Lock()
	s.unsubscribeLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Subscriber) unsubscribeLocked() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) && !errors.Is(err, nats.ErrBadSubscription) {
			s.log.Warn("unsubscribe failed", "subject", sub.Subject, "error", err)
		}
	}
	s.subs = nil
}
