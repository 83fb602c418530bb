package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/catalog"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/dailygame"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/game"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/store"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/suggest"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *http.Client) {
	t.Helper()
	srv := New(Config{DailySalt: "test_salt"}, store.NewMemoryStore())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := ts.Client()
	client.Jar = jar // keep the anon cookie across requests
	return srv, ts, client
}

// dialEvents subscribes to /events and waits until the hub has
// registered the connection, so a broadcast issued right after cannot
// slip past the subscriber.
func dialEvents(t *testing.T, srv *Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return conn
}

func getJSON(t *testing.T, c *http.Client, url string, out any) {
	t.Helper()
	res, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestSuggestionsEnvelope(t *testing.T) {
	_, ts, client := newTestServer(t)

	var ev suggest.Envelope
	getJSON(t, client, ts.URL+"/daily-game/suggestions", &ev)

	games := ev.Games()
	if len(games) != len(catalog.Games()) {
		t.Fatalf("got %d games, want %d", len(games), len(catalog.Games()))
	}
	for _, g := range games {
		if g.GameID.ID == "" || g.URL == "" || g.Difficulty == "" {
			t.Fatalf("incomplete entry: %+v", g)
		}
		if g.IsPlayed {
			t.Fatalf("fresh user has played %s", g.GameID.ID)
		}
	}
}

func TestSubmitScoreMarksPlayed(t *testing.T) {
	_, ts, client := newTestServer(t)

	var ev suggest.Envelope
	getJSON(t, client, ts.URL+"/daily-game/suggestions", &ev)
	target := ev.Games()[0]

	res := postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": target.GameID.ID, "score": 150})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d", res.StatusCode)
	}
	var body struct {
		OK       bool `json:"ok"`
		Recorded bool `json:"recorded"`
		Score    int  `json:"score"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK || !body.Recorded || body.Score != 150 {
		t.Fatalf("submit response %+v", body)
	}

	getJSON(t, client, ts.URL+"/daily-game/suggestions", &ev)
	for _, g := range ev.Games() {
		if g.GameID.ID == target.GameID.ID && !g.IsPlayed {
			t.Fatal("submitted game not marked played on refetch")
		}
	}
}

func TestSubmitScoreDuplicateIgnored(t *testing.T) {
	_, ts, client := newTestServer(t)
	gameID := catalog.Games()[0].ID

	res := postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": gameID, "score": 120})
	res.Body.Close()
	res = postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": gameID, "score": 180})
	defer res.Body.Close()

	var body struct {
		Recorded bool `json:"recorded"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Recorded {
		t.Fatal("second submission for the same day must not record")
	}

	var lb struct {
		Top []store.LeaderRow `json:"top"`
	}
	getJSON(t, client, ts.URL+"/daily-game/leaderboard", &lb)
	if len(lb.Top) != 1 || lb.Top[0].Score != 120 {
		t.Fatalf("leaderboard %+v, want the first score only", lb.Top)
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	_, ts, client := newTestServer(t)

	res := postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": "nope", "score": 10})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown game: status %d, want 400", res.StatusCode)
	}

	// Out-of-range scores clamp server-side.
	res = postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": catalog.Games()[0].ID, "score": 9999})
	defer res.Body.Close()
	var body struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Score != game.DefaultMaxScore {
		t.Fatalf("score %d, want clamped to %d", body.Score, game.DefaultMaxScore)
	}
}

func TestAuthFlow(t *testing.T) {
	_, ts, client := newTestServer(t)

	res := postJSON(t, client, ts.URL+"/auth/signup", map[string]string{"Username": "player_one", "Password": "hunter2hunter2"})
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signup status %d", res.StatusCode)
	}

	var me authUser
	getJSON(t, client, ts.URL+"/auth/me", &me)
	if me.Username != "player_one" {
		t.Fatalf("me = %+v", me)
	}

	// Duplicate username is rejected.
	res = postJSON(t, client, ts.URL+"/auth/signup", map[string]string{"Username": "player_one", "Password": "hunter2hunter2"})
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status %d, want 409", res.StatusCode)
	}

	res = postJSON(t, client, ts.URL+"/auth/logout", nil)
	res.Body.Close()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/auth/me", nil)
	r2, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	r2.Body.Close()
	if r2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", r2.StatusCode)
	}
}

func TestScoreEventBroadcast(t *testing.T) {
	srv, ts, client := newTestServer(t)
	conn := dialEvents(t, srv, ts)

	gameID := catalog.Games()[0].ID
	res := postJSON(t, client, ts.URL+"/game/score", map[string]any{"gameId": gameID, "score": 90})
	res.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev ScoreEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "gameScoreSubmitted" || ev.GameID != gameID || ev.Score != 90 || !ev.Success {
		t.Fatalf("event %+v", ev)
	}
}

// TestConcurrentBroadcasts hammers one subscriber from many goroutines
// at once. Every frame must arrive intact: connection writes are
// funneled through a single writer per subscriber.
func TestConcurrentBroadcasts(t *testing.T) {
	srv, ts, _ := newTestServer(t)
	conn := dialEvents(t, srv, ts)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			srv.Hub().Broadcast(ScoreEvent{GameID: catalog.Games()[0].ID, Score: score, Success: true})
		}(i)
	}
	wg.Wait()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		var ev ScoreEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if ev.Type != "gameScoreSubmitted" {
			t.Fatalf("frame %d corrupted: %+v", i, ev)
		}
		seen[ev.Score] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct events, want %d", len(seen), n)
	}
}

// TestEndToEndCompletionFlow drives the client-side protocol against
// the real server: resolve the current route, submit once, refetch.
func TestEndToEndCompletionFlow(t *testing.T) {
	_, ts, client := newTestServer(t)

	// Discover today's rotation so the "current page" is a daily game.
	var ev suggest.Envelope
	getJSON(t, client, ts.URL+"/daily-game/suggestions", &ev)
	target := ev.Games()[0]

	sc := suggest.NewHTTPClient(ts.URL, suggest.WithHTTPClient(client))
	coord := dailygame.NewCoordinator(sc, game.DefaultMaxScore)
	flow := dailygame.NewFlow(dailygame.NewResolver(sc, nil), coord)

	rec := game.CompletionRecord{Score: 150, IsVictory: true, Difficulty: target.Difficulty}
	res := flow.Open(context.Background(), target.URL+"/?ref=homepage", rec)

	if !coord.Done() {
		t.Fatal("submission not settled after open")
	}
	if res.IsPlayed == nil || !*res.IsPlayed {
		t.Fatalf("refetched context must show played: %+v", res)
	}

	var lb struct {
		Top []store.LeaderRow `json:"top"`
	}
	getJSON(t, client, ts.URL+"/daily-game/leaderboard", &lb)
	if len(lb.Top) != 1 || lb.Top[0].Score != 150 || lb.Top[0].GameID != target.GameID.ID {
		t.Fatalf("leaderboard %+v", lb.Top)
	}

	// Closing the surface afterwards issues no further submissions.
	flow.Close(context.Background())
	getJSON(t, client, ts.URL+"/daily-game/leaderboard", &lb)
	if len(lb.Top) != 1 {
		t.Fatalf("close must not duplicate the submission: %+v", lb.Top)
	}
}
