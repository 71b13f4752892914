package chesscom_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
	"github.com/blunderfixer/blunderfixer/internal/infrastructure/chesscom"
)

const samplePGN = `[Event \"Live Chess\"]\n[ECO \"C50\"]\n\n1. e4 e5 *`

func TestFetchRecent(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/pub/player/alice/games/archives", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"archives":[%q,%q,%q]}`,
			server.URL+"/pub/player/alice/games/2024/01",
			server.URL+"/pub/player/alice/games/2024/02",
			server.URL+"/pub/player/alice/games/2024/03",
		)
	})
	monthGame := func(uuid string) string {
		return fmt.Sprintf(`{
			"uuid": %q,
			"url": "https://www.chess.com/game/live/1",
			"pgn": "%s",
			"time_class": "blitz",
			"time_control": "300",
			"end_time": 1709290000,
			"white": {"username": "alice", "rating": 1500, "result": "win"},
			"black": {"username": "bob", "rating": 1480, "result": "resigned"},
			"evals": [30, 25, -180]
		}`, uuid, samplePGN)
	}
	mux.HandleFunc("/pub/player/alice/games/2024/01", func(w http.ResponseWriter, r *http.Request) {
		t.Error("oldest archive fetched despite the month window")
	})
	mux.HandleFunc("/pub/player/alice/games/2024/02", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"games":[%s]}`, monthGame("g-feb"))
	})
	mux.HandleFunc("/pub/player/alice/games/2024/03", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"games":[%s]}`, monthGame("g-mar"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := chesscom.NewClient(chesscom.WithBaseURL(server.URL), chesscom.WithMonths(2))

	games, err := client.FetchRecent(context.Background(), "Alice")
	require.NoError(t, err)
	require.Len(t, games, 2)

	g := games[0]
	assert.Equal(t, "g-feb", g.UUID)
	assert.Equal(t, "alice", g.White.Username)
	assert.Equal(t, 1480, g.Black.Rating)
	assert.Equal(t, "blitz", g.TimeClass)
	assert.Equal(t, "C50", g.ECO)
	assert.Equal(t, time.Unix(1709290000, 0).UTC(), g.PlayedAt)
	assert.Equal(t, []float64{30, 25, -180}, g.Evals)

	assert.Equal(t, "g-mar", games[1].UUID)
}

func TestFetchRecentRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := chesscom.NewClient(chesscom.WithBaseURL(server.URL))

	_, err := client.FetchRecent(context.Background(), "alice")
	assert.ErrorIs(t, err, syncjob.ErrAdapterRateLimited)
}

func TestFetchRecentServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := chesscom.NewClient(chesscom.WithBaseURL(server.URL))

	_, err := client.FetchRecent(context.Background(), "alice")
	assert.ErrorIs(t, err, syncjob.ErrAdapterUnreachable)
}

func TestFetchRecentUnreachableHost(t *testing.T) {
	t.Parallel()

	// Port reserved then closed, nothing listens there.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := chesscom.NewClient(chesscom.WithBaseURL(url))

	_, err := client.FetchRecent(context.Background(), "alice")
	assert.ErrorIs(t, err, syncjob.ErrAdapterUnreachable)
}

func TestFetchRecentMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"archives": not json`)
	}))
	defer server.Close()

	client := chesscom.NewClient(chesscom.WithBaseURL(server.URL))

	_, err := client.FetchRecent(context.Background(), "alice")
	assert.ErrorIs(t, err, syncjob.ErrAdapterUnreachable)
}
