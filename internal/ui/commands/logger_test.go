package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw-molt/clawlog/internal/logstream"
	"github.com/openclaw-molt/clawlog/internal/ui"
	"github.com/openclaw-molt/clawlog/internal/ui/logging"
	uitesting "github.com/openclaw-molt/clawlog/internal/ui/testing"
)

//go:generate go test -v -run TestLoggerView -update

var interactive = ui.DisplayConfig{IsInteractive: true}

// logAPI serves body as the log API response
func logAPI(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStore(source string) *logstream.Store {
	return logstream.New(logstream.Config{
		RemoteSource: source,
		Fetcher: logstream.NewHTTPFetcher(logstream.HTTPFetcherConfig{
			Timeout:    2 * time.Second,
			RetryDelay: time.Millisecond,
		}),
	})
}

func TestLoggerView_EmptyStream(t *testing.T) {
	store := newStore("")
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name:       "no source, no entries",
			ViewGolden: "logger_empty",
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "(no log source)")
				uitesting.AssertContains(t, view, "Logs (0)")
				uitesting.AssertContains(t, view, "No logs yet")
				uitesting.AssertContains(t, view, "r: refresh | c: clear | u: edit URL | q: close")
				uitesting.AssertNotContains(t, view, "Failed to fetch logs")
				uitesting.AssertNotContains(t, view, "j/k: scroll")
			},
		}).
		Run(t)
}

func TestLoggerView_Refresh(t *testing.T) {
	srv := logAPI(t, http.StatusOK, `{"entries":[
		{"ts":"2024-01-01T00:00:02+00:00","level":"ERROR","msg":"gateway down","tool":"openclaw_molt_mcp","operation":"status","error_type":"ConnectError"},
		{"ts":"2024-01-01T00:00:01+00:00","level":"INFO","msg":"Logging configured"}
	]}`)
	store := newStore(srv.URL)
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "source shown before fetching",
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Source: "+srv.URL)
			},
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "r fetches and renders the merged stream",
			Msg:  uitesting.Key("r"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Logs (2)")
				uitesting.AssertContains(t, view, "[INFO] Logging configured")
				uitesting.AssertContains(t, view, "[ERROR] openclaw_molt_mcp status (ConnectError) gateway down")
				assert.Less(t, strings.Index(view, "Logging configured"), strings.Index(view, "gateway down"))
				uitesting.AssertNotContains(t, view, "No logs yet")
			},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.False(t, store.IsFetching())
				assert.Empty(t, store.FetchError())
			},
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "c clears everything",
			Msg:  uitesting.Key("c"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Logs (0)")
				uitesting.AssertContains(t, view, "No logs yet")
			},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.Empty(t, store.Entries())
			},
		}).
		Run(t)
}

func TestLoggerView_FetchFailure(t *testing.T) {
	srv := logAPI(t, http.StatusServiceUnavailable, `{}`)
	store := newStore(srv.URL)
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "banner and error entry",
			Msg:  uitesting.Key("r"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Failed to fetch logs: HTTP 503")
				uitesting.AssertContains(t, view, "[ERROR] Failed to fetch logs: HTTP 503")
				uitesting.AssertContains(t, view, "Logs (1)")
			},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.Equal(t, "HTTP 503", store.FetchError())
				assert.Nil(t, m.GetError())
			},
		}).
		Run(t)
}

func TestLoggerView_FetchFailureView(t *testing.T) {
	store := logstream.New(logstream.Config{
		RemoteSource: "http://logs.test/api/logs",
		Fetcher:      failingFetcher{},
	})
	store.FetchRemote(t.Context())
	entries := store.Entries()
	require.Len(t, entries, 1)

	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name:           "banner above the error entry",
			ViewGolden:     "logger_fetch_failure",
			ViewGoldenData: struct{ Time string }{Time: logging.FormatTimestamp(entries[0])},
		}).
		Run(t)
}

func TestLoggerView_BannerOutlivesErrorEntry(t *testing.T) {
	store := logstream.New(logstream.Config{
		RemoteSource: "http://logs.test/api/logs",
		Fetcher:      failingFetcher{},
	})
	store.FetchRemote(t.Context())
	// Drop the client error entry but keep the fetch error
	for range logstream.MaxClientEntries {
		store.Append(logstream.Entry{Message: "filler"})
	}
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	// Banner and stream are rendered independently
	out := view.View()
	assert.Contains(t, out, "Failed to fetch logs: unreachable")
	assert.Contains(t, out, "Logs (1000)")
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string, int) ([]logstream.Entry, error) {
	return nil, fmt.Errorf("unreachable")
}

func TestLoggerView_EditSource(t *testing.T) {
	store := newStore("")
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "u opens the editor",
			Msg:  uitesting.Key("u"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Log API URL:")
				uitesting.AssertContains(t, view, "enter: save | esc: cancel")
			},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.True(t, m.IsEditing())
			},
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "typing does not trigger shortcuts",
			Msg:  uitesting.Type("http://127.0.0.1:9000/api/logs"),
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.True(t, m.IsEditing())
				assert.Empty(t, store.RemoteSource())
			},
			SkipViewAssertion: true,
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "enter commits without fetching",
			Msg:  uitesting.Key("enter"),
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "Source: http://127.0.0.1:9000/api/logs")
			},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				assert.False(t, m.IsEditing())
				assert.Equal(t, "http://127.0.0.1:9000/api/logs", store.RemoteSource())
				assert.Empty(t, store.Entries())
			},
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "esc cancels an edit",
			Msg:  uitesting.Key("u"),
			ModelAssert: func(t *testing.T, m *LoggerView) {
				_, _ = m.Update(uitesting.Type("/other"))
				_, _ = m.Update(uitesting.Key("esc"))
				assert.False(t, m.IsEditing())
				assert.Equal(t, "http://127.0.0.1:9000/api/logs", store.RemoteSource())
			},
			SkipViewAssertion: true,
		}).
		Run(t)
}

func TestLoggerView_Scrolling(t *testing.T) {
	originalLocal := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = originalLocal })

	store := newStore("")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 55 {
		store.Append(logstream.Entry{Timestamp: base.Add(time.Duration(i) * time.Second), Message: fmt.Sprintf("entry %02d", i)})
	}
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	offset := func(expected int) func(t *testing.T, m *LoggerView) {
		return func(t *testing.T, m *LoggerView) {
			assert.Equal(t, expected, m.ScrollOffset())
		}
	}

	uitesting.NewTestHarness(t, view).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "fetch result anchors to the newest entries",
			Msg:  ui.LogsFetchedMsg{},
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "↑ 15 more lines above")
				uitesting.AssertContains(t, view, "entry 54")
				uitesting.AssertNotContains(t, view, "entry 14")
				uitesting.AssertContains(t, view, "j/k: scroll")
			},
			ModelAssert: offset(15),
		}).
		Step(uitesting.TestStep[*LoggerView]{Name: "K jumps to top", Msg: uitesting.Key("K"), ModelAssert: offset(0), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{Name: "k stops at top", Msg: uitesting.Key("k"), ModelAssert: offset(0), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{Name: "j scrolls down", Msg: uitesting.Key("j"), ModelAssert: offset(1), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{Name: "ctrl+d pages down", Msg: uitesting.Key("ctrl+d"), ModelAssert: offset(11), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{Name: "ctrl+d clamps", Msg: uitesting.Key("ctrl+d"), ModelAssert: offset(15), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{Name: "ctrl+u pages up", Msg: uitesting.Key("ctrl+u"), ModelAssert: offset(5), SkipViewAssertion: true}).
		Step(uitesting.TestStep[*LoggerView]{
			Name:       "scrolled up view shows both indicators",
			Msg:        uitesting.Key("k"),
			ViewGolden: "logger_scrolled",
			ViewAssert: func(t *testing.T, view string) {
				uitesting.AssertContains(t, view, "↑ 4 more lines above")
				uitesting.AssertContains(t, view, "↓ 11 more lines below")
			},
			ModelAssert: offset(4),
		}).
		Step(uitesting.TestStep[*LoggerView]{
			Name: "new entries do not move a scrolled-up view",
			Msg:  ui.LogsFetchedMsg{},
			ModelAssert: func(t *testing.T, m *LoggerView) {
				store.Append(logstream.Entry{Timestamp: base.Add(time.Hour), Message: "late"})
				_, _ = m.Update(ui.StreamChangedMsg{})
				assert.Equal(t, 4, m.ScrollOffset())
			},
			SkipViewAssertion: true,
		}).
		Step(uitesting.TestStep[*LoggerView]{Name: "J jumps to bottom", Msg: uitesting.Key("J"), ModelAssert: offset(16), SkipViewAssertion: true}).
		Run(t)
}

func TestLoggerView_Close(t *testing.T) {
	tcs := []struct {
		name          string
		key           string
		expectedError bool
	}{
		{name: "q", key: "q"},
		{name: "esc", key: "esc"},
		{name: "ctrl+c", key: "ctrl+c", expectedError: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: newStore("")})

			_, cmd := view.Update(uitesting.Key(tc.key))

			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, view.View())
			if tc.expectedError {
				require.NotNil(t, view.GetError())
				assert.True(t, view.GetError().SilentExit)
			} else {
				assert.Nil(t, view.GetError())
			}
		})
	}
}

func TestLoggerView_SignalCancel(t *testing.T) {
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: newStore("")})

	_, cmd := view.Update(ui.SignalCancelMsg{})

	require.NotNil(t, cmd)
	require.NotNil(t, view.GetError())
	assert.Equal(t, ui.ErrorTypeUserCancelled, view.GetError().Type)
}

func TestLoggerView_OpenCmd(t *testing.T) {
	t.Run("no source, no fetch", func(t *testing.T) {
		view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: newStore("")})
		assert.Nil(t, view.openCmd())
	})

	t.Run("fetches when a source is configured", func(t *testing.T) {
		srv := logAPI(t, http.StatusOK, `{"entries":[{"msg":"from server"}]}`)
		store := newStore(srv.URL)
		view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

		cmd := view.openCmd()
		require.NotNil(t, cmd)
		assert.IsType(t, ui.LogsFetchedMsg{}, cmd())

		entries := store.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "from server", entries[0].Message)
	})
}

func TestLoggerView_WatchStore(t *testing.T) {
	store := newStore("")
	view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: interactive, Store: store})

	cmd := view.watchStore()
	go store.Append(logstream.Entry{Message: "async"})

	assert.IsType(t, ui.StreamChangedMsg{}, cmd())
}

func TestLoggerView_SimpleOutput(t *testing.T) {
	simple := ui.DisplayConfig{IsInteractive: false}

	t.Run("fetch failure becomes an API error", func(t *testing.T) {
		srv := logAPI(t, http.StatusBadGateway, `{}`)
		view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: simple, Store: newStore(srv.URL)})

		msg := view.Init()()
		_, cmd := view.Update(msg)

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		require.NotNil(t, view.GetError())
		assert.Equal(t, ui.ErrorTypeAPI, view.GetError().Type)
		assert.Empty(t, view.View())
	})

	t.Run("keys are ignored", func(t *testing.T) {
		store := newStore("")
		store.Append(logstream.Entry{Message: "kept"})
		view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: simple, Store: store})

		_, cmd := view.Update(uitesting.Key("c"))

		assert.Nil(t, cmd)
		assert.Len(t, store.Entries(), 1)
	})

	t.Run("no source still quits", func(t *testing.T) {
		view := NewLoggerView(t.Context(), LoggerConfig{DisplayConfig: simple, Store: newStore("")})

		msg := view.Init()()
		_, cmd := view.Update(msg)

		require.NotNil(t, cmd)
		assert.Nil(t, view.GetError())
	})
}
