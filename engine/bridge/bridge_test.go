package bridge

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := NewQueue()
	q.Push("abc")
	q.Push("de")
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, "abcde", string(q.Drain()))
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Push("x")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 800)
}

func TestInteractionLock(t *testing.T) {
	_, ok := NewInteractionLock(true).(*sync.Mutex)
	assert.True(t, ok)
	l := NewInteractionLock(false)
	assert.IsType(t, nopLock{}, l)
	l.Lock()
	l.Lock()
	l.Unlock()
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
		err  bool
	}{
		{name: "keys", line: "Kabc\n", want: Command{Kind: CommandKeys, Chars: "abc"}},
		{name: "keys keep spaces", line: "K a b", want: Command{Kind: CommandKeys, Chars: " a b"}},
		{name: "empty keys", line: "K", want: Command{Kind: CommandKeys}},
		{name: "mouse", line: "M3 -4.5\r\n", want: Command{Kind: CommandMouse, DX: 3, DY: -4.5}},
		{name: "mouse leading space", line: "M 1 2", want: Command{Kind: CommandMouse, DX: 1, DY: 2}},
		{name: "forward", line: "F0.25", want: Command{Kind: CommandForward, Amount: 0.25}},
		{name: "roll", line: "R -10", want: Command{Kind: CommandRoll, Amount: -10}},
		{name: "mouse missing value", line: "M1", err: true},
		{name: "mouse bad value", line: "M1 x", err: true},
		{name: "forward bad value", line: "Ffast", err: true},
		{name: "unknown", line: "Z1", err: true},
		{name: "empty", line: "\n", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if tt.err {
				assert.ErrorIs(t, err, ErrMalformedCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandlerAppliesMotion(t *testing.T) {
	cam := camera.NewCamera()
	ref := camera.NewCamera()
	h := NewHandler(NewQueue(), NewInteractionLock(true), cam)

	h.Handle(Command{Kind: CommandMouse, DX: 4, DY: 2})
	ref.Rotate(2, -4, 0, camera.SourcePointer)
	assert.Equal(t, ref.Pose(), cam.Pose())

	h.Handle(Command{Kind: CommandRoll, Amount: 5})
	ref.Rotate(0, 0, 5, camera.SourceKeyboard)
	assert.Equal(t, ref.Pose(), cam.Pose())

	h.Handle(Command{Kind: CommandForward, Amount: 1})
	ref.FlyForward(1)
	assert.Equal(t, ref.Pose(), cam.Pose())

	h.Handle(Command{Kind: CommandKeys, Chars: "hx"})
	assert.Equal(t, "hx", string(h.Queue().Drain()))
}

func TestRoutedHandlerFollowsTarget(t *testing.T) {
	a, b := camera.NewCamera(), camera.NewCamera()
	current := a
	h := NewRoutedHandler(NewQueue(), NewInteractionLock(true), func() camera.Camera { return current })
	before := b.Pose()

	h.Handle(Command{Kind: CommandRoll, Amount: 5})
	assert.Equal(t, before, b.Pose())
	assert.NotEqual(t, before, a.Pose())

	current = b
	h.Handle(Command{Kind: CommandForward, Amount: 1})
	assert.NotEqual(t, before, b.Pose())
}

func startTCP(t *testing.T, h Handler) Listener {
	t.Helper()
	l := NewTCPListener("127.0.0.1:0", h)
	require.NoError(t, l.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, l.Stop(ctx))
	})
	return l
}

func TestTCPListenerRoundTrip(t *testing.T) {
	lock := NewInteractionLock(true)
	cam := camera.NewCamera()
	before := cam.Pose()
	h := NewHandler(NewQueue(), lock, cam)
	l := startTCP(t, h)

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	_, err = conn.Write([]byte("Kabc\nKde\nM 1 2\n\nF1\nR5\n"))
	require.NoError(t, err)
	r := bufio.NewReader(conn)
	for range 5 {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, Ack+"\n", line)
	}

	assert.Equal(t, "abcde", string(h.Queue().Drain()))
	lock.Lock()
	assert.NotEqual(t, before, cam.Pose())
	lock.Unlock()
}

func TestTCPListenerClosesOnMalformed(t *testing.T) {
	h := NewHandler(NewQueue(), NewInteractionLock(true), camera.NewCamera())
	l := startTCP(t, h)

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte("Ka\nbogus\nKb\n"))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, Ack+"\n", line)
	_, err = r.ReadString('\n')
	assert.Error(t, err)
	conn.Close()

	// the listener keeps accepting
	conn, err = net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte("Kc\n"))
	require.NoError(t, err)
	line, err = bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, Ack+"\n", line)
	assert.Equal(t, "ac", string(h.Queue().Drain()))
}

func TestWebSocketListenerRoundTrip(t *testing.T) {
	h := NewHandler(NewQueue(), NewInteractionLock(true), camera.NewCamera())
	l := NewWebSocketListener("127.0.0.1:0", h, WithPath("/bridge"))
	require.NoError(t, l.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, l.Stop(ctx))
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr().String()+"/bridge", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for _, msg := range []string{"Kxy", "M 3 4", "F0.5"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		typ, reply, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, typ)
		assert.Equal(t, Ack, string(reply))
	}
	assert.Equal(t, "xy", string(h.Queue().Drain()))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("?")))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
