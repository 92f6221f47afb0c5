package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"pokerd/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsChannel adapts a websocket connection to the game's player channel.
// A read pump decodes inbound frames into game messages; writes are
// serialized under a mutex. Transport-level ping/pong keeps the
// connection alive independently of game traffic.
type wsChannel struct {
	conn  *websocket.Conn
	clock quartz.Clock

	inbound chan game.Message
	done    chan struct{}
	once    sync.Once

	writeMu sync.Mutex
}

func newWSChannel(conn *websocket.Conn, clock quartz.Clock) *wsChannel {
	ch := &wsChannel{
		conn:    conn,
		clock:   clock,
		inbound: make(chan game.Message, 16),
		done:    make(chan struct{}),
	}
	go ch.readPump()
	go ch.pingPump()
	return ch
}

func (ch *wsChannel) readPump() {
	defer ch.Close()
	ch.conn.SetReadDeadline(time.Now().Add(pongWait))
	ch.conn.SetPongHandler(func(string) error {
		ch.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := ch.conn.ReadMessage()
		if err != nil {
			return
		}
		ch.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg game.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		select {
		case ch.inbound <- msg:
		case <-ch.done:
			return
		default:
			// nobody is waiting on this many messages, drop the frame
		}
	}
}

func (ch *wsChannel) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ch.writeMu.Lock()
			ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := ch.conn.WriteMessage(websocket.PingMessage, nil)
			ch.writeMu.Unlock()
			if err != nil {
				ch.Close()
				return
			}
		case <-ch.done:
			return
		}
	}
}

func (ch *wsChannel) Send(ctx context.Context, payload any) error {
	select {
	case <-ch.done:
		return game.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ch.conn.WriteJSON(payload); err != nil {
		ch.Close()
		return err
	}
	return nil
}

func (ch *wsChannel) Recv(ctx context.Context, deadline time.Time) (game.Message, error) {
	wait := deadline.Sub(ch.clock.Now())
	if wait <= 0 {
		return game.Message{}, game.ErrMessageTimeout
	}
	timer := ch.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case msg := <-ch.inbound:
		return msg, nil
	case <-timer.C:
		return game.Message{}, game.ErrMessageTimeout
	case <-ch.done:
		return game.Message{}, game.ErrChannelClosed
	case <-ctx.Done():
		return game.Message{}, ctx.Err()
	}
}

func (ch *wsChannel) Close() error {
	ch.once.Do(func() {
		close(ch.done)
		ch.conn.Close()
	})
	return nil
}
