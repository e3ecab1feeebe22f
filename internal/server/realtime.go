package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	realtimeWriteTimeout = 10 * time.Second
	realtimePingInterval = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type realtimeEventPayload struct {
	Table       string    `json:"table"`
	Action      string    `json:"action"`
	RowID       string    `json:"row_id"`
	ScopeColumn string    `json:"scope_column,omitempty"`
	ScopeValue  string    `json:"scope_value,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// handleRealtime upgrades the request to a websocket and streams change
// notifications for one table scope until the client disconnects.
func (h *httpHandler) handleRealtime(c *gin.Context) {
	table := c.Query("table")
	if table == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table_required"})
		return
	}
	scopeColumn := c.Query("scope_column")
	scopeValue := c.Query("scope_value")
	if (scopeColumn == "") != (scopeValue == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope_requires_column_and_value"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	changes, cancel := h.deps.Gateway.Hub().Subscribe(ctx, table, scopeColumn, scopeValue)
	defer cancel()

	// Reads are discarded; the read loop only notices the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(realtimePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(realtimeWriteTimeout)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case change, ok := <-changes:
			if !ok {
				return
			}
			payload := realtimeEventPayload{
				Table:       change.Table,
				Action:      string(change.Action),
				RowID:       change.RowID,
				ScopeColumn: change.ScopeColumn,
				ScopeValue:  change.ScopeValue,
				Timestamp:   change.Timestamp,
			}
			conn.SetWriteDeadline(time.Now().Add(realtimeWriteTimeout)) //nolint:errcheck
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		}
	}
}
