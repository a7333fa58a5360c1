package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/skyhaul/airportscript/pkg/streaming"
)

// SecretHeader carries the journal server secret on the upgrade request.
const SecretHeader = "X-Journal-Secret"

const (
	outboxSize   = 10_000
	ackBuffer    = 16
	maxRedials   = 10
	firstBackoff = time.Second
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

var errStreamClosed = errors.New("journal stream closed")

// stream owns one journal server connection. A single supervisor goroutine
// writes the outbox, and redials with backoff when the link breaks.
type stream struct {
	url    string
	secret string
	logger *slog.Logger

	outbox chan []byte
	acks   chan streaming.AckMessage
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu      sync.Mutex
	conn    *ws.Conn
	session []byte // start_session frame, replayed after a redial

	seq     atomic.Uint64
	dropped atomic.Int64
}

func newStream(url, secret string, logger *slog.Logger) *stream {
	return &stream{
		url:    url,
		secret: secret,
		logger: logger,
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackBuffer),
		done:   make(chan struct{}),
	}
}

// open dials the server once and starts the supervisor.
func (s *stream) open() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go s.supervise(conn)
	return nil
}

func (s *stream) dial() (*ws.Conn, error) {
	header := http.Header{}
	if s.secret != "" {
		header.Set(SecretHeader, s.secret)
	}
	conn, _, err := ws.DefaultDialer.Dial(s.url, header)
	if err != nil {
		return nil, fmt.Errorf("dial journal server: %w", err)
	}
	return conn, nil
}

func (s *stream) supervise(conn *ws.Conn) {
	defer s.wg.Done()
	for conn != nil {
		err := s.serve(conn)
		if err == nil {
			return
		}
		s.logger.Warn("Journal stream broken", "error", err)
		_ = conn.Close()
		conn = s.redial()
	}
}

// serve pumps the outbox into conn until the stream closes (nil) or the
// link fails.
func (s *stream) serve(conn *ws.Conn) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	readErr := make(chan error, 1)
	go func() { readErr <- s.readAcks(conn) }()

	for {
		select {
		case <-s.done:
			return nil
		case err := <-readErr:
			return err
		case frame := <-s.outbox:
			if err := writeFrame(conn, frame); err != nil {
				return err
			}
		}
	}
}

func (s *stream) readAcks(conn *ws.Conn) error {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			s.logger.Debug("Ignoring journal server message", "raw", string(message))
			continue
		}
		select {
		case s.acks <- ack:
		default:
			s.logger.Debug("Ack buffer full, dropping", "for", ack.For)
		}
	}
}

// redial reconnects with exponential backoff and replays the session
// frame. It returns nil when the stream closed or every attempt failed.
func (s *stream) redial() *ws.Conn {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()

	backoff := firstBackoff
	for attempt := 1; attempt <= maxRedials; attempt++ {
		s.logger.Info("Redialing journal server", "attempt", attempt, "backoff", backoff)
		select {
		case <-s.done:
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)

		conn, err := s.dial()
		if err != nil {
			s.logger.Warn("Redial failed", "attempt", attempt, "error", err)
			continue
		}

		s.mu.Lock()
		session := s.session
		s.mu.Unlock()
		if session != nil {
			if err := writeFrame(conn, session); err != nil {
				s.logger.Warn("Session replay failed", "error", err)
				_ = conn.Close()
				continue
			}
		}
		s.logger.Info("Journal stream restored", "attempt", attempt)
		return conn
	}

	s.logger.Error("Giving up on journal server", "attempts", maxRedials)
	return nil
}

func writeFrame(conn *ws.Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(ws.TextMessage, frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// push queues frame without blocking. Frames are dropped when the outbox
// is full.
func (s *stream) push(frame []byte) {
	select {
	case s.outbox <- frame:
	default:
		s.dropped.Add(1)
		s.logger.Warn("Journal outbox full, dropping entry")
	}
}

// pushAndWait queues frame and waits for the server to acknowledge msgType.
func (s *stream) pushAndWait(frame []byte, msgType string, timeout time.Duration) error {
	s.push(frame)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ack := <-s.acks:
			if ack.For == msgType {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("no ack for %q within %s", msgType, timeout)
		case <-s.done:
			return fmt.Errorf("waiting for ack of %q: %w", msgType, errStreamClosed)
		}
	}
}

func (s *stream) setSession(frame []byte) {
	s.mu.Lock()
	s.session = frame
	s.mu.Unlock()
}

// close stops the supervisor, then sends a close frame on the live link.
func (s *stream) close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		s.mu.Unlock()
		if conn == nil {
			return
		}
		_ = conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
		err = conn.Close()
	})
	return err
}
