package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rockmass/ml"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 30 * time.Second
	wsMaxMessageSize = 4096
	wsSendBuffer     = 16
)

// 客户端消息类型
const (
	wsTypeUpdate   = "update"
	wsTypePing     = "ping"
	wsTypeAnalysis = "analysis"
	wsTypePong     = "pong"
	wsTypeError    = "error"
)

// wsMessage 客户端发来的消息。Features 中缺失的字段保持滑块默认值。
type wsMessage struct {
	Type     string          `json:"type"`
	Features json.RawMessage `json:"features,omitempty"`
}

// wsReply 服务端回复
type wsReply struct {
	Type      string    `json:"type"`
	Data      *Analysis `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// wsClient 一个分析会话的连接
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	id     string
	logger *zap.Logger
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || originAllowed(allowedOrigins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

// handleWebSocket 升级连接并在请求协程中运行读取泵，写入泵在独立协程中运行。
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, wsSendBuffer),
		done:   make(chan struct{}),
		id:     uuid.NewString(),
		logger: d.logger,
	}
	d.logger.Info("websocket client connected",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("client_id", client.id),
	)

	go client.writePump()
	client.readPump(func(msg wsMessage) wsReply {
		return d.handleMessage(r.Context(), msg)
	})

	d.logger.Info("websocket client disconnected", zap.String("client_id", client.id))
}

// handleMessage 处理一条客户端消息并生成回复
func (d *Dashboard) handleMessage(ctx context.Context, msg wsMessage) wsReply {
	switch msg.Type {
	case wsTypePing:
		return wsReply{Type: wsTypePong}
	case wsTypeUpdate:
		features := ml.DefaultFeatures()
		if len(msg.Features) > 0 {
			if err := json.Unmarshal(msg.Features, &features); err != nil {
				return wsReply{Type: wsTypeError, Error: "invalid features"}
			}
		}
		if err := validateFeatures(features); err != nil {
			return wsReply{Type: wsTypeError, Error: err.Error()}
		}
		analysis, err := d.Analyze(ctx, features)
		if err != nil {
			if isInputError(err) {
				return wsReply{Type: wsTypeError, Error: err.Error()}
			}
			return wsReply{Type: wsTypeError, Error: "recommendation failed"}
		}
		return wsReply{Type: wsTypeAnalysis, Data: analysis}
	default:
		return wsReply{Type: wsTypeError, Error: "unknown message type: " + msg.Type}
	}
}

// writePump WebSocket写入泵
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", zap.String("client_id", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump WebSocket读取泵。返回时关闭 send，写入泵随之退出。
func (c *wsClient) readPump(handle func(wsMessage) wsReply) {
	defer close(c.send)

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg wsMessage
		reply := wsReply{Type: wsTypeError, Error: "invalid message"}
		if err := json.Unmarshal(data, &msg); err == nil {
			reply = handle(msg)
		}
		reply.Timestamp = time.Now()

		payload, err := json.Marshal(reply)
		if err != nil {
			c.logger.Error("websocket encode failed", zap.String("client_id", c.id), zap.Error(err))
			continue
		}
		select {
		case c.send <- payload:
		case <-c.done:
			return
		}
	}
}
