package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/san-kum/seekbot/internal/servo"
)

const (
	DefaultAddr         = "127.0.0.1:7070"
	DefaultMaxLineBytes = 4 << 20

	writeTimeout = 100 * time.Millisecond
)

type Config struct {
	Addr         string `yaml:"addr"`
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

func DefaultConfig() Config {
	return Config{Addr: DefaultAddr, MaxLineBytes: DefaultMaxLineBytes}
}

// Stats counts routed and skipped lines across all connections.
type Stats struct {
	Connections int
	Lines       int
	Detections  int
	Depth       int
	Malformed   int
}

// Listener accepts sensor connections. Every connected peer also receives
// the velocity commands published through it on the cmd_vel topic.
type Listener struct {
	cfg    Config
	topics Topics
	router *Router
	logger *log.Logger
	ln     net.Listener

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	stats Stats
	wg    sync.WaitGroup
}

// Listen binds cfg.Addr. Serve must be called to start accepting.
func Listen(cfg Config, topics Topics, sink Sink, logger *log.Logger) (*Listener, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	return &Listener{
		cfg:    cfg,
		topics: topics,
		router: NewRouter(topics, sink),
		logger: logger,
		ln:     ln,
		conns:  make(map[net.Conn]struct{}),
	}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until ctx is done or the listener is closed.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.wg.Wait()
				return nil
			}
			return err
		}
		l.mu.Lock()
		l.conns[conn] = struct{}{}
		l.stats.Connections++
		l.mu.Unlock()

		l.wg.Add(1)
		go l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer l.wg.Done()
	defer func() {
		l.mu.Lock()
		delete(l.conns, conn)
		l.mu.Unlock()
		conn.Close()
	}()
	l.logger.Printf("ingest: %s connected", conn.RemoteAddr())

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), l.cfg.MaxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		topic, err := l.router.Route(line)
		l.count(topic, err)
		if err != nil {
			l.logger.Printf("ingest: %s: skipping line: %v", conn.RemoteAddr(), err)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		l.logger.Printf("ingest: %s: %v", conn.RemoteAddr(), err)
	}
	l.logger.Printf("ingest: %s disconnected", conn.RemoteAddr())
}

func (l *Listener) count(topic string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Lines++
	if err != nil {
		l.stats.Malformed++
		return
	}
	switch topic {
	case l.topics.Detections:
		l.stats.Detections++
	case l.topics.Depth:
		l.stats.Depth++
	}
}

// Publish broadcasts cmd to every connected peer. Peers are written outside
// the lock. Failed peers are dropped.
func (l *Listener) Publish(cmd servo.Command) error {
	line, err := EncodeCommand(l.topics.CmdVel, cmd)
	if err != nil {
		return err
	}
	l.mu.Lock()
	peers := make([]net.Conn, 0, len(l.conns))
	for conn := range l.conns {
		peers = append(peers, conn)
	}
	l.mu.Unlock()

	var (
		errs   []error
		failed []net.Conn
	)
	for _, conn := range peers {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(line); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", conn.RemoteAddr(), err))
			failed = append(failed, conn)
		}
	}
	if len(failed) > 0 {
		l.mu.Lock()
		for _, conn := range failed {
			conn.Close()
			delete(l.conns, conn)
		}
		l.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (l *Listener) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Close stops accepting and disconnects every peer.
func (l *Listener) Close() error {
	err := l.ln.Close()
	l.mu.Lock()
	for conn := range l.conns {
		conn.Close()
	}
	l.mu.Unlock()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
