package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/utils/logger"
	"github.com/sattawala/sattawala-backend/utils/money"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoundFeed pushes round lifecycle events (round opened, result announced)
// to connected frontends so they don't have to poll.
type RoundFeed struct {
	mu      sync.RWMutex
	clients map[*FeedClient]bool
}

var Feed = &RoundFeed{clients: make(map[*FeedClient]bool)}

// -------------------- Client management --------------------

func (f *RoundFeed) addClient(c *FeedClient) {
	f.mu.Lock()
	f.clients[c] = true
	total := len(f.clients)
	f.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Infof("[Feed] client connected (total=%d)", total)
}

func (f *RoundFeed) removeClient(c *FeedClient) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		c.Close()
	}
	f.mu.Unlock()
}

// -------------------- Broadcast --------------------

func (f *RoundFeed) broadcast(event string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})
	if err != nil {
		logger.Errorf("[Feed] marshal %s: %v", event, err)
		return
	}

	f.mu.RLock()
	clients := make([]*FeedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			logger.Warnf("[Feed] dropping %s to slow client", event)
		}
	}
}

// BroadcastRoundOpened tells clients a new round is accepting bets.
func (f *RoundFeed) BroadcastRoundOpened(round *models.Round) {
	f.broadcast("round_opened", gin.H{
		"round_id": round.ID,
		"status":   round.Status,
	})
}

// BroadcastResultAnnounced tells clients the round settled.
func (f *RoundFeed) BroadcastResultAnnounced(summary *SettlementSummary) {
	f.broadcast("result_announced", gin.H{
		"round_id":       summary.RoundID,
		"winning_number": summary.WinningNumber,
		"total_bets":     money.Rupees(summary.TotalBets),
		"total_payout":   money.Rupees(summary.TotalPayout),
		"win_count":      summary.WinCount,
	})
}

// HandleRoundFeed upgrades the connection and registers the client.
func HandleRoundFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[Feed] upgrade error: %v", err)
		return
	}

	client := &FeedClient{
		conn: conn,
		feed: Feed,
		send: make(chan []byte, 32),
	}
	Feed.addClient(client)
}
