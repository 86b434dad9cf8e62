package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tabulator/metrics"
	"tabulator/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const standingsConcurrency = 4

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow any host origin to connect to the websocket
		return true
	},
}

type standingsFunc func(ctx context.Context, categoryId int) (*CategoryStandings, error)

// StandingsBroadcaster pushes category standings to websocket subscribers.
// Standings are recomputed from the ledger on every refresh and only sent when
// they changed since the last push.
type StandingsBroadcaster struct {
	compute     standingsFunc
	interval    time.Duration
	mu          sync.Mutex
	connections map[int]map[*websocket.Conn]bool
	lastSent    map[int][]byte
}

func NewStandingsBroadcaster(services *Services, interval time.Duration) *StandingsBroadcaster {
	return newStandingsBroadcaster(func(ctx context.Context, categoryId int) (*CategoryStandings, error) {
		standings, err := services.Results.GetCategoryResults(ctx, categoryId)
		if err != nil {
			return nil, err
		}
		sealed, err := services.Certification.IsSealed(ctx, categoryId)
		if err != nil {
			return nil, err
		}
		return &CategoryStandings{
			CategoryId: categoryId,
			Sealed:     sealed,
			Standings:  utils.Map(standings, toStandingResponse),
		}, nil
	}, interval)
}

func newStandingsBroadcaster(compute standingsFunc, interval time.Duration) *StandingsBroadcaster {
	return &StandingsBroadcaster{
		compute:     compute,
		interval:    interval,
		connections: make(map[int]map[*websocket.Conn]bool),
		lastSent:    make(map[int][]byte),
	}
}

// Run refreshes subscribed categories until ctx is done.
func (b *StandingsBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.refresh(ctx)
		}
	}
}

func (b *StandingsBroadcaster) serialize(ctx context.Context, categoryId int) ([]byte, error) {
	standings, err := b.compute(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	return json.Marshal(standings)
}

// refresh recomputes every subscribed category. A category that fails to
// compute keeps its last pushed standings; the others are still sent.
func (b *StandingsBroadcaster) refresh(ctx context.Context) {
	b.mu.Lock()
	categoryIds := utils.Keys(b.connections)
	b.mu.Unlock()
	if len(categoryIds) == 0 {
		return
	}

	payloads := make([][]byte, len(categoryIds))
	var g errgroup.Group
	g.SetLimit(standingsConcurrency)
	for i, categoryId := range categoryIds {
		g.Go(func() error {
			payload, err := b.serialize(ctx, categoryId)
			if err != nil {
				log.Printf("Failed to refresh standings of category %d: %v", categoryId, err)
				return nil
			}
			payloads[i] = payload
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, categoryId := range categoryIds {
		if payloads[i] == nil || bytes.Equal(b.lastSent[categoryId], payloads[i]) {
			continue
		}
		b.lastSent[categoryId] = payloads[i]
		for conn := range b.connections[categoryId] {
			if err := conn.WriteMessage(websocket.TextMessage, payloads[i]); err != nil {
				conn.Close()
				b.unsubscribeLocked(categoryId, conn)
			}
		}
	}
}

func (b *StandingsBroadcaster) subscribe(categoryId int, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.connections[categoryId]; !ok {
		b.connections[categoryId] = make(map[*websocket.Conn]bool)
	}
	b.connections[categoryId][conn] = true
	metrics.ConnectedResultSubscribers.Inc()
}

func (b *StandingsBroadcaster) unsubscribe(categoryId int, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubscribeLocked(categoryId, conn)
}

func (b *StandingsBroadcaster) unsubscribeLocked(categoryId int, conn *websocket.Conn) {
	if !b.connections[categoryId][conn] {
		return
	}
	delete(b.connections[categoryId], conn)
	metrics.ConnectedResultSubscribers.Dec()
	if len(b.connections[categoryId]) == 0 {
		delete(b.connections, categoryId)
		delete(b.lastSent, categoryId)
	}
}

// @id StandingsWebSocket
// @Description Websocket for category standings. Once connected, the client receives the current standings and every later change.
// @Tags results
// @Param category_id path int true "Category Id"
// @Success 200 {object} CategoryStandings
// @Router /categories/{category_id}/results/ws [get]
func (b *StandingsBroadcaster) WebSocketHandler(c *gin.Context) {
	categoryId, ok := intParam(c, "category_id")
	if !ok {
		return
	}
	initial, err := b.serialize(c, categoryId)
	if err != nil {
		abort(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// the initial write happens before subscribing, so refresh never writes concurrently
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		return
	}
	b.subscribe(categoryId, conn)
	defer b.unsubscribe(categoryId, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
