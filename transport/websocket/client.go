package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pmmsinno/lightrace/game/session"
)

// Inbound action types sent by the controller and display pages.
const (
	actionJoinGame   = "joinGame"
	actionHoldStart  = "holdStart"
	actionHoldEnd    = "holdEnd"
	actionStartGame  = "startGame"
	actionResetLobby = "resetLobby"
	actionKickPlayer = "kickPlayer"
	actionJoinTV     = "joinTV"
)

// Client is one WebSocket connection. Its id doubles as the player id once the
// connection joins the game.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	id      string
	display bool
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinGameData struct {
	Name string `json:"name"`
}

type kickPlayerData struct {
	PlayerID string `json:"player_id"`
}

// readPump reads inbound frames and dispatches them to the game service. On
// exit the connection is treated as a disconnect unless it was a display.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
		if !c.display {
			c.hub.svc.Disconnect(context.Background(), c.id)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("websocket read error")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.log.Debug().Err(err).Str("conn", c.id).Msg("malformed frame")
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch routes one inbound action. Unknown actions are ignored so old
// clients can't crash the server.
func (c *Client) dispatch(msg inboundMessage) {
	ctx := context.Background()
	switch msg.Type {
	case actionJoinGame:
		var d joinGameData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		if err := c.hub.svc.Join(ctx, c.id, d.Name); err != nil {
			c.hub.ToPlayer(c.id, session.EventJoinError, session.JoinErrorPayload{Reason: err.Error()})
		}

	case actionHoldStart:
		c.hub.svc.HoldStart(ctx, c.id)

	case actionHoldEnd:
		c.hub.svc.HoldEnd(ctx, c.id)

	case actionStartGame:
		c.hub.svc.StartGame(ctx)

	case actionResetLobby:
		c.hub.svc.ResetLobby(ctx)

	case actionKickPlayer:
		var d kickPlayerData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		c.hub.svc.KickPlayer(ctx, d.PlayerID)

	case actionJoinTV:
		c.hub.promoteDisplay(c)
		c.hub.svc.RegisterDisplay(ctx, c.id)

	default:
		c.hub.log.Debug().Str("conn", c.id).Str("type", msg.Type).Msg("unknown action")
	}
}

// writePump pumps queued frames to the connection and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub dropped this client.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
