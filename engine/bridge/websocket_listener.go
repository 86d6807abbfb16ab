package bridge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/gorilla/websocket"
)

type websocketListener struct {
	mu *sync.Mutex

	addr     string
	handler  Handler
	cfg      listenerConfig
	upgrader websocket.Upgrader

	// serving admits one connection at a time.
	serving  *sync.Mutex
	listener net.Listener
	server   *http.Server
	conns    map[*websocket.Conn]struct{}
	wg       sync.WaitGroup
}

// Ensure websocketListener implements Listener interface.
var _ Listener = &websocketListener{}

// NewWebSocketListener creates a listener speaking the bridge protocol over websocket. Each
// text message carries one command line and is answered with a text message holding the
// acknowledgement. Like the TCP listener, connections are serviced one at a time.
//
// Parameters:
//   - addr: the TCP address to bind
//   - h: the command handler
//   - options: functional options to configure the listener
//
// Returns:
//   - Listener: the newly created listener
func NewWebSocketListener(addr string, h Handler, options ...ListenerBuilderOption) Listener {
	cfg := newListenerConfig(options)
	return &websocketListener{
		mu:      &sync.Mutex{},
		addr:    addr,
		handler: h,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		serving: &sync.Mutex{},
		conns:   make(map[*websocket.Conn]struct{}),
	}
}

func (l *websocketListener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc(l.cfg.path, l.serveHTTP)
	srv := &http.Server{Handler: mux}

	l.mu.Lock()
	l.listener = ln
	l.server = srv
	l.mu.Unlock()
	common.Logger().Info("bridge listening", "transport", "websocket", "addr", ln.Addr().String(), "path", l.cfg.path)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.Logger().Warn("bridge websocket server stopped", "error", err)
		}
	}()
	return nil
}

func (l *websocketListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

func (l *websocketListener) serveHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Logger().Warn("bridge websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(int64(l.cfg.maxLine))

	l.mu.Lock()
	l.conns[conn] = struct{}{}
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.conns, conn)
		l.mu.Unlock()
		_ = conn.Close()
	}()

	l.serving.Lock()
	defer l.serving.Unlock()

	log := common.Logger().With("remote", r.RemoteAddr)
	log.Info("bridge connection opened", "transport", "websocket")
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("bridge read failed", "error", err)
			}
			break
		}
		if typ != websocket.TextMessage {
			continue
		}
		line := strings.TrimRight(string(msg), "\r\n")
		if line == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			log.Warn("closing bridge connection", "error", err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, err.Error()))
			return
		}
		l.handler.Handle(cmd)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(Ack)); err != nil {
			log.Warn("bridge write failed", "error", err)
			return
		}
	}
	log.Info("bridge connection closed")
}

func (l *websocketListener) Stop(ctx context.Context) error {
	l.mu.Lock()
	srv := l.server
	for c := range l.conns {
		_ = c.Close()
	}
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

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
