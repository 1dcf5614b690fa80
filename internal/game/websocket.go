package game

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/randomPoison/hangry-river-horse/internal/broadcast"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = time.Minute
	pingPeriod = 30 * time.Second
)

// Close reasons sent to subscribers.
const (
	CloseLagging        = "lagging"
	CloseServerShutdown = "server-shutdown"
)

type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

type websocketConnection struct {
	socket *websocket.Conn
}

func (wc *websocketConnection) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	wc.socket.Close()
}

func NewWebsocketConnection(conn *websocket.Conn) *websocketConnection {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return &websocketConnection{conn}
}

// OriginChecker accepts requests without an Origin header and, when the
// allow list is empty, any origin at all.
func OriginChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		return slices.Contains(allowedOrigins, origin)
	}
}

// runSession pumps a subscription into a session until either side goes away
// and returns the close reason it sent.
func runSession[T Broadcast](conn NetworkSession, sub *broadcast.Subscription[T], pings <-chan time.Time) string {
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			// Clients have nothing to say on these sockets, reads only keep
			// the deadline and close handling alive.
			if _, err := conn.Read(); err != nil {
				return
			}
		}
	}()

	reason := writePump(conn, sub, pings, readDone)
	sub.Close()
	conn.Close(reason)
	<-readDone
	return reason
}

func writePump[T Broadcast](conn NetworkSession, sub *broadcast.Subscription[T], pings <-chan time.Time, readDone <-chan struct{}) string {
	for {
		select {
		case <-readDone:
			return ""
		case ev, ok := <-sub.Events():
			if !ok {
				if sub.Lagged() {
					return CloseLagging
				}
				return CloseServerShutdown
			}
			data, err := EncodeBroadcast(ev)
			if err != nil {
				log.Error().Err(err).Str("kind", ev.Kind()).Msg("failed to encode broadcast")
				continue
			}
			if err := conn.Write(data); err != nil {
				return ""
			}
		case <-pings:
			if err := conn.Ping(); err != nil {
				return ""
			}
		}
	}
}

func serveSubscription[T Broadcast](ctx *gin.Context, upgrader *websocket.Upgrader, role string, b *broadcast.Broadcaster[T]) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Debug().Err(err).Str("role", role).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	session := uuid.NewString()
	logger := log.With().Str("session", session).Str("role", role).Logger()
	logger.Debug().Str("ip", ctx.ClientIP()).Msg("subscriber connected")

	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	reason := runSession(NewWebsocketConnection(conn), b.Subscribe(), pings.C)
	logger.Debug().Str("reason", reason).Msg("subscriber disconnected")
}
