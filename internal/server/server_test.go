package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pontoon/internal/deck"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves games dealt from draws: player, player, dealer,
// dealer, then any further draws.
func newTestServer(t *testing.T, draws string) (*Server, *httptest.Server) {
	t.Helper()
	sessions := session.NewTable(session.Config{}, func() *game.Game {
		return game.New(game.WithDeckSource(func() *deck.Deck {
			cards := deck.MustParseCards(draws)
			slices.Reverse(cards)
			return deck.FromCards(cards)
		}))
	})
	srv := NewServer(sessions, log.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func startGame(t *testing.T, ts *httptest.Server) StartResponse {
	t.Helper()
	resp := postJSON(t, ts.URL+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[StartResponse](t, resp)
}

func TestStartHidesDealerHoleCard(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ 7♦ 9♣ 8♥")

	resp := postJSON(t, ts.URL+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Contains(t, raw, "game_id")
	assert.JSONEq(t, `{
		"player_hand": [{"value":"10","suit":"♠"},{"value":"7","suit":"♦"}],
		"dealer_hand": [{"value":"9","suit":"♣"},"Hidden"],
		"player_value": 17,
		"dealer_value": "Hidden",
		"game_over": false,
		"player_stuck": false,
		"phase": "in_progress"
	}`, string(raw["game_state"]))
}

func TestHitAndStandOverHTTP(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ 2♦ 9♣ 8♥ 5♠")
	started := startGame(t, ts)

	resp := postJSON(t, ts.URL+"/hit", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hit := decode[HitResponse](t, resp)
	assert.Equal(t, game.StatusSuccess, hit.Result.Status)
	assert.Equal(t, 17, hit.GameState.PlayerValue)
	assert.True(t, hit.GameState.DealerValue.Hidden())

	resp = postJSON(t, ts.URL+"/stand", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stand := decode[StandResponse](t, resp)
	assert.Equal(t, game.StatusTie, stand.Result.Status)
	assert.Equal(t, game.MsgTie, stand.Result.Message)
	assert.True(t, stand.GameState.GameOver)
	v, ok := stand.GameState.DealerValue.Value()
	assert.True(t, ok)
	assert.Equal(t, 17, v)
}

func TestStickIsStand(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")
	started := startGame(t, ts)

	resp := postJSON(t, ts.URL+"/stick", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stand := decode[StandResponse](t, resp)
	assert.Equal(t, game.StatusWin, stand.Result.Status)
}

func TestStandTwiceConflicts(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")
	started := startGame(t, ts)

	resp := postJSON(t, ts.URL+"/stand", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/stand", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "The game is over", body.Detail)
	assert.Equal(t, CodeRoundOver, body.Code)
}

func TestHitAfterRoundOverIsSoftError(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥ 5♠")
	started := startGame(t, ts)
	postJSON(t, ts.URL+"/stand", GameRequest{GameID: started.GameID})

	resp := postJSON(t, ts.URL+"/hit", GameRequest{GameID: started.GameID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hit := decode[HitResponse](t, resp)
	assert.Equal(t, game.StatusError, hit.Result.Status)
	assert.Equal(t, game.MsgCannotHit, hit.Result.Message)
}

func TestUnknownGameID(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")

	for _, path := range []string{"/hit", "/stand", "/stick"} {
		t.Run(path, func(t *testing.T) {
			resp := postJSON(t, ts.URL+path, GameRequest{GameID: "nope"})
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			body := decode[ErrorResponse](t, resp)
			assert.Equal(t, "Invalid game_id", body.Detail)
		})
	}

	resp, err := http.Get(ts.URL + "/state?game_id=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")

	resp, err := http.Post(ts.URL+"/hit", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStateRequiresGameID(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")

	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStateReflectsGame(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")
	started := startGame(t, ts)

	resp, err := http.Get(ts.URL + "/state?game_id=" + started.GameID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[game.State](t, resp)
	assert.Equal(t, 20, state.PlayerValue)
	assert.Equal(t, 2, state.DealerHand.Len())
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")

	resp, err := http.Get(ts.URL + "/start")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg Message) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(msg))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketRound(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ 2♦ 9♣ 8♥ 5♠")
	conn := dialWS(t, ts)

	reply := roundTrip(t, conn, Message{Type: MessageTypeStart, RequestID: "1"})
	require.Equal(t, MessageTypeStarted, reply.Type)
	assert.Equal(t, "1", reply.RequestID)
	var started StartResponse
	require.NoError(t, json.Unmarshal(reply.Data, &started))
	assert.Equal(t, started.GameID, reply.GameID)
	assert.Equal(t, 12, started.GameState.PlayerValue)

	reply = roundTrip(t, conn, Message{Type: MessageTypeHit, RequestID: "2", GameID: started.GameID})
	require.Equal(t, MessageTypeHitResult, reply.Type)
	assert.Equal(t, "2", reply.RequestID)
	var hit HitResponse
	require.NoError(t, json.Unmarshal(reply.Data, &hit))
	assert.Equal(t, game.StatusSuccess, hit.Result.Status)

	reply = roundTrip(t, conn, Message{Type: MessageTypeState, RequestID: "3", GameID: started.GameID})
	require.Equal(t, MessageTypeGameState, reply.Type)

	reply = roundTrip(t, conn, Message{Type: MessageTypeStand, RequestID: "4", GameID: started.GameID})
	require.Equal(t, MessageTypeStandResult, reply.Type)
	var stand StandResponse
	require.NoError(t, json.Unmarshal(reply.Data, &stand))
	assert.Equal(t, game.StatusTie, stand.Result.Status)

	reply = roundTrip(t, conn, Message{Type: MessageTypeStand, RequestID: "5", GameID: started.GameID})
	require.Equal(t, MessageTypeError, reply.Type)
	assert.Equal(t, "5", reply.RequestID)
	var errBody ErrorResponse
	require.NoError(t, json.Unmarshal(reply.Data, &errBody))
	assert.Equal(t, CodeRoundOver, errBody.Code)
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")
	conn := dialWS(t, ts)

	reply := roundTrip(t, conn, Message{Type: "deal", RequestID: "x"})
	require.Equal(t, MessageTypeError, reply.Type)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, CodeUnknownType, body.Code)

	reply = roundTrip(t, conn, Message{Type: MessageTypeHit, RequestID: "y", GameID: "missing"})
	require.Equal(t, MessageTypeError, reply.Type)
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, CodeNotFound, body.Code)
	assert.Equal(t, "Invalid game_id", body.Detail)
}

func TestShutdownClosesConnections(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t, "10♠ K♦ 9♣ 8♥")
	conn := dialWS(t, ts)

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	require.Eventually(t, func() bool { return srv.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
