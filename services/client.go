package services

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sattawala/sattawala-backend/utils/logger"
)

type FeedClient struct {
	conn *websocket.Conn
	feed *RoundFeed
	send chan []byte
	once sync.Once
}

func (c *FeedClient) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// --------------------
// Client read/write pumps
// --------------------

// readPump discards inbound messages; the feed is one-way, but we must keep
// reading to notice the close frame.
func (c *FeedClient) readPump() {
	defer func() {
		c.feed.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Infof("[Feed] client disconnected")
			} else {
				logger.Warnf("[Feed] read error: %v", err)
			}
			return
		}
	}
}

func (c *FeedClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Warnf("[Feed] write error: %v", err)
			return
		}
	}
}
