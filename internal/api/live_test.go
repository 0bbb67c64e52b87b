package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func dialLive(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readLive(t *testing.T, conn *websocket.Conn) LiveMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg LiveMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read live message: %v", err)
	}
	return msg
}

func TestLiveStreamsResults(t *testing.T) {
	router, _ := setupTestRouter()
	srv := httptest.NewServer(router)
	defer srv.Close()

	base := createFruit(t, router)
	conn := dialLive(t, srv, base)

	first := readLive(t, conn)
	if first.Type != "results" || first.Payload == nil || first.Payload.MaxScore != 110 {
		t.Fatalf("unexpected first frame %+v", first)
	}

	expectStatus(t, do(t, router, "PUT", base+"/ratings/apple/taste", map[string]float64{"value": 6}), http.StatusOK)

	update := readLive(t, conn)
	if update.Type != "results" || update.Payload == nil {
		t.Fatalf("unexpected update frame %+v", update)
	}
	if !near(update.Payload.Percentages["apple"], 21.818) {
		t.Errorf("expected apple at 21.818, got %f", update.Payload.Percentages["apple"])
	}
	if update.Payload.Revision != first.Payload.Revision+1 {
		t.Errorf("expected revision %d, got %d", first.Payload.Revision+1, update.Payload.Revision)
	}

	expectStatus(t, do(t, router, "DELETE", base, nil), http.StatusNoContent)
	if msg := readLive(t, conn); msg.Type != "deleted" {
		t.Errorf("expected deleted frame, got %+v", msg)
	}
}

func TestLiveUnknownSession(t *testing.T) {
	router, _ := setupTestRouter()

	w := do(t, router, "GET", "/api/v1/sessions/"+uuid.New().String()+"/live", nil)
	expectStatus(t, w, http.StatusNotFound)
}
