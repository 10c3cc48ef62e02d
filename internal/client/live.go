package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"conferenceqa/internal/domain"
	"conferenceqa/internal/realtime"
)

// DefaultRetryDelay is the fixed pause between re-dial attempts.
const DefaultRetryDelay = 2 * time.Second

// DefaultReadTimeout is how long a connection may stay silent before it is
// treated as dead. The server pings well within it.
const DefaultReadTimeout = 60 * time.Second

const (
	liveBufSize = 16
	writeWait   = time.Second
)

// LiveSource follows question topics over the server's WebSocket endpoint.
// It implements domain.EventSource. A dropped connection is re-dialed after a
// fixed delay and a reconnected event is emitted once it is back, since
// notifications may have been missed in between.
type LiveSource struct {
	wsBase     string
	dialer     *websocket.Dialer
	retryDelay  time.Duration
	readTimeout time.Duration
	logger      *slog.Logger
}

// LiveOption configures a LiveSource.
type LiveOption func(*LiveSource)

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) LiveOption {
	return func(s *LiveSource) { s.retryDelay = d }
}

// WithReadTimeout overrides DefaultReadTimeout.
func WithReadTimeout(d time.Duration) LiveOption {
	return func(s *LiveSource) { s.readTimeout = d }
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) LiveOption {
	return func(s *LiveSource) { s.dialer = d }
}

// NewLiveSource returns a source for the server at baseURL. http and https
// schemes are mapped to ws and wss.
func NewLiveSource(baseURL string, logger *slog.Logger, opts ...LiveOption) (*LiveSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	s := &LiveSource{
		wsBase:      u.String(),
		dialer:      websocket.DefaultDialer,
		retryDelay:  DefaultRetryDelay,
		readTimeout: DefaultReadTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe dials the live endpoint of the conference named by topic. The first
// dial is synchronous so an unknown conference fails here with domain.ErrConferenceNotFound.
func (s *LiveSource) Subscribe(ctx context.Context, topic string) (<-chan domain.NotificationEvent, func(), error) {
	key, ok := realtime.KeyFromTopic(topic)
	if !ok {
		return nil, nil, fmt.Errorf("topic %q: %w", topic, domain.ErrInvalidInput)
	}
	endpoint := s.wsBase + "/conferences/" + url.PathEscape(key) + "/live"

	conn, err := s.dial(ctx, endpoint)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan domain.NotificationEvent, liveBufSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		s.run(ctx, conn, endpoint, key, out)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return out, stop, nil
}

func (s *LiveSource) dial(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusNotFound:
				return nil, fmt.Errorf("dial %s: %w", endpoint, domain.ErrConferenceNotFound)
			default:
				return nil, fmt.Errorf("dial %s: status %d: %w", endpoint, resp.StatusCode, err)
			}
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return conn, nil
}

func (s *LiveSource) run(ctx context.Context, conn *websocket.Conn, endpoint, key string, out chan<- domain.NotificationEvent) {
	for {
		err := s.read(ctx, conn, out)
		if ctx.Err() != nil {
			return
		}
		s.logger.WarnContext(ctx, "live connection lost", "endpoint", endpoint, "err", err)

		conn = s.redial(ctx, endpoint)
		if conn == nil {
			return
		}
		s.logger.InfoContext(ctx, "live connection restored", "endpoint", endpoint)
		select {
		case out <- domain.NotificationEvent{ConferenceKey: key, Kind: domain.EventReconnected}:
		case <-ctx.Done():
			_ = conn.Close()
			return
		}
	}
}

// redial retries until it connects or ctx ends, in which case it returns nil.
func (s *LiveSource) redial(ctx context.Context, endpoint string) *websocket.Conn {
	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		conn, err := s.dial(ctx, endpoint)
		if err == nil {
			return conn
		}
		if ctx.Err() != nil {
			return nil
		}
		s.logger.DebugContext(ctx, "live redial failed", "endpoint", endpoint, "err", err)
		timer.Reset(s.retryDelay)
	}
}

// read forwards frames from conn until it fails or ctx ends. conn is closed on return.
// Frames and server pings push the read deadline out, so a half-open connection
// fails here after readTimeout and gets re-dialed.
func (s *LiveSource) read(ctx context.Context, conn *websocket.Conn, out chan<- domain.NotificationEvent) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		var ev domain.NotificationEvent
		if err := json.Unmarshal(msg, &ev); err != nil || ev.Kind == "" {
			s.logger.DebugContext(ctx, "ignoring live frame", "frame", string(msg))
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
