package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tabulator/app_error"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStandings struct {
	mu     sync.Mutex
	scores map[int]float64
}

func (f *fakeStandings) set(categoryId int, score float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[categoryId] = score
}

func (f *fakeStandings) compute(_ context.Context, categoryId int) (*CategoryStandings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score, ok := f.scores[categoryId]
	if !ok {
		return nil, app_error.NotFound("category %d not found", categoryId)
	}
	return &CategoryStandings{
		CategoryId: categoryId,
		Standings:  []*Standing{{ContestantId: 1, Rank: 1, Result: Result{RawTotal: score, FinalScore: score}}},
	}, nil
}

func dialStandings(t *testing.T, server *httptest.Server, categoryId string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/categories/" + categoryId + "/results/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStandings(t *testing.T, conn *websocket.Conn) *CategoryStandings {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	standings := &CategoryStandings{}
	require.NoError(t, json.Unmarshal(message, standings))
	return standings
}

func waitForSubscribers(t *testing.T, b *StandingsBroadcaster, categoryId int, count int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.connections[categoryId]) == count
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStandingsBroadcasterPushesChanges(t *testing.T) {
	fake := &fakeStandings{scores: map[int]float64{1: 70, 2: 50}}
	b := newStandingsBroadcaster(fake.compute, time.Hour)
	r := gin.New()
	r.GET("/categories/:category_id/results/ws", b.WebSocketHandler)
	server := httptest.NewServer(r)
	defer server.Close()

	first := dialStandings(t, server, "1")
	assert.Equal(t, 70.0, readStandings(t, first).Standings[0].Result.FinalScore)
	second := dialStandings(t, server, "2")
	assert.Equal(t, 50.0, readStandings(t, second).Standings[0].Result.FinalScore)
	waitForSubscribers(t, b, 1, 1)
	waitForSubscribers(t, b, 2, 1)

	fake.set(1, 82.5)
	b.refresh(context.Background())
	assert.Equal(t, 82.5, readStandings(t, first).Standings[0].Result.FinalScore)
	// category 2 is pushed once on the first refresh, unchanged afterwards
	assert.Equal(t, 50.0, readStandings(t, second).Standings[0].Result.FinalScore)

	fake.set(2, 55)
	b.refresh(context.Background())
	assert.Equal(t, 55.0, readStandings(t, second).Standings[0].Result.FinalScore)

	first.Close()
	waitForSubscribers(t, b, 1, 0)
}

func TestStandingsRefreshSkipsFailingCategory(t *testing.T) {
	fake := &fakeStandings{scores: map[int]float64{1: 70, 2: 50}}
	b := newStandingsBroadcaster(fake.compute, time.Hour)
	r := gin.New()
	r.GET("/categories/:category_id/results/ws", b.WebSocketHandler)
	server := httptest.NewServer(r)
	defer server.Close()

	first := dialStandings(t, server, "1")
	readStandings(t, first)
	second := dialStandings(t, server, "2")
	readStandings(t, second)
	waitForSubscribers(t, b, 1, 1)
	waitForSubscribers(t, b, 2, 1)

	fake.mu.Lock()
	delete(fake.scores, 1)
	fake.scores[2] = 64
	fake.mu.Unlock()

	b.refresh(context.Background())
	assert.Equal(t, 64.0, readStandings(t, second).Standings[0].Result.FinalScore)
	b.mu.Lock()
	_, pushed := b.lastSent[1]
	b.mu.Unlock()
	assert.False(t, pushed, "a category that failed to compute is not pushed")
}

func TestStandingsWebSocketUnknownCategory(t *testing.T) {
	fake := &fakeStandings{scores: map[int]float64{}}
	b := newStandingsBroadcaster(fake.compute, time.Hour)
	r := gin.New()
	r.GET("/categories/:category_id/results/ws", b.WebSocketHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/categories/9/results/ws", nil))
	assert.Equal(t, 404, w.Code)
}
