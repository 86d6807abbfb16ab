package bridge

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// Listener accepts bridge connections and feeds their commands to a Handler.
type Listener interface {
	// Start binds the listener and begins accepting in the background.
	//
	// Returns:
	//   - error: an error if the address could not be bound
	Start() error

	// Addr returns the bound address, or nil before Start.
	//
	// Returns:
	//   - net.Addr: the address
	Addr() net.Addr

	// Stop closes the listener and any open connection and waits for the serving goroutine.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: ctx.Err() if the wait was cut short
	Stop(ctx context.Context) error
}

type tcpListener struct {
	mu *sync.Mutex

	addr     string
	handler  Handler
	maxLine  int
	listener net.Listener
	conn     net.Conn
	quit     chan struct{}
	wg       sync.WaitGroup
}

// Ensure tcpListener implements Listener interface.
var _ Listener = &tcpListener{}

// NewTCPListener creates a line-protocol listener. Connections are serviced one at a time on
// a single goroutine; a second client waits in the accept backlog until the first disconnects.
//
// Parameters:
//   - addr: the TCP address to bind, e.g. "127.0.0.1:7000"
//   - h: the command handler
//   - options: functional options to configure the listener
//
// Returns:
//   - Listener: the newly created listener
func NewTCPListener(addr string, h Handler, options ...ListenerBuilderOption) Listener {
	cfg := newListenerConfig(options)
	return &tcpListener{
		mu:      &sync.Mutex{},
		addr:    addr,
		handler: h,
		maxLine: cfg.maxLine,
		quit:    make(chan struct{}),
	}
}

func (l *tcpListener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()
	common.Logger().Info("bridge listening", "transport", "tcp", "addr", ln.Addr().String())

	l.wg.Add(1)
	go l.acceptLoop(ln)
	return nil
}

func (l *tcpListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

func (l *tcpListener) acceptLoop(ln net.Listener) {
	defer l.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-l.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			common.Logger().Warn("bridge accept failed", "error", err)
			continue
		}

		l.mu.Lock()
		select {
		case <-l.quit:
			l.mu.Unlock()
			_ = conn.Close()
			return
		default:
		}
		l.conn = conn
		l.mu.Unlock()

		l.serve(conn)

		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
	}
}

// serve reads commands from one connection until it closes or sends a malformed line.
func (l *tcpListener) serve(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	log := common.Logger().With("remote", remote)
	log.Info("bridge connection opened")

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), l.maxLine)
	w := bufio.NewWriter(conn)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			log.Warn("closing bridge connection", "error", err)
			return
		}
		l.handler.Handle(cmd)
		if _, err := w.WriteString(Ack + "\n"); err != nil {
			log.Warn("bridge write failed", "error", err)
			return
		}
		if err := w.Flush(); err != nil {
			log.Warn("bridge write failed", "error", err)
			return
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warn("bridge read failed", "error", err)
	}
	log.Info("bridge connection closed")
}

func (l *tcpListener) Stop(ctx context.Context) error {
	l.mu.Lock()
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
	if l.listener != nil {
		_ = l.listener.Close()
	}
	if l.conn != nil {
		_ = l.conn.Close()
	}
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
