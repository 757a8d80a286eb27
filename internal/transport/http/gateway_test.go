package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizlive/internal/domain"
	"quizlive/internal/logger"
	"quizlive/internal/store"
	"quizlive/internal/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gw := NewGateway(memory.New(), store.NopNotifier{}, logger.New("test"), "http://quiz.local", 128, 50*time.Millisecond)
	server := httptest.NewServer(gw.Router())
	t.Cleanup(server.Close)
	return server
}

func createPayload() map[string]any {
	return map[string]any{
		"title":           "Capitals",
		"maxPlayers":      4,
		"timeType":        "perQuestion",
		"timePerQuestion": 20,
		"lives":           3,
		"questions": []map[string]any{
			{"question": "Capital of France?", "options": []string{"Rome", "Paris"}, "correctAnswer": 1},
		},
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func createQuizOverHTTP(t *testing.T, server *httptest.Server) domain.Quiz {
	t.Helper()
	resp := postJSON(t, server.URL+"/quizzes", createPayload())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	var created struct {
		Quiz    domain.Quiz `json:"quiz"`
		JoinURL string      `json:"joinUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.JoinURL != "http://quiz.local/join/"+created.Quiz.ID {
		t.Fatalf("unexpected join url %q", created.JoinURL)
	}
	return created.Quiz
}

func TestCreateAndJoinOverHTTP(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuizOverHTTP(t, server)

	resp := postJSON(t, server.URL+"/quizzes/"+quiz.ID+"/join", map[string]any{"name": "Alice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join: status %d", resp.StatusCode)
	}
	var player domain.Player
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		t.Fatalf("decode player: %v", err)
	}
	if player.Name != "Alice" || player.Lives != 3 || player.Avatar.ID == "" {
		t.Fatalf("unexpected player: %+v", player)
	}
}

func TestJoinErrorStatuses(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuizOverHTTP(t, server)

	if resp := postJSON(t, server.URL+"/quizzes/"+quiz.ID+"/join", map[string]any{"name": "Alice"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first join: status %d", resp.StatusCode)
	}
	if resp := postJSON(t, server.URL+"/quizzes/"+quiz.ID+"/join", map[string]any{"name": "alice"}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate name: status %d, want 409", resp.StatusCode)
	}
	if resp := postJSON(t, server.URL+"/quizzes/nope/join", map[string]any{"name": "Bob"}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown quiz: status %d, want 404", resp.StatusCode)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/quizzes", map[string]any{"title": ""})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid input: status %d, want 422", resp.StatusCode)
	}

	raw, err := http.Post(server.URL+"/quizzes", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if raw.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: status %d, want 400", raw.StatusCode)
	}
}

func TestGetQuiz(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuizOverHTTP(t, server)

	resp, err := http.Get(server.URL + "/quizzes/" + quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get quiz: status %d", resp.StatusCode)
	}

	missing, err := http.Get(server.URL + "/quizzes/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown quiz: status %d, want 404", missing.StatusCode)
	}
}

func TestQRServesPNG(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuizOverHTTP(t, server)

	resp, err := http.Get(fmt.Sprintf("%s/quizzes/%s/qr?size=96", server.URL, quiz.ID))
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type %q", ct)
	}
}

func TestWebSocketRankingsStream(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuizOverHTTP(t, server)

	if resp := postJSON(t, server.URL+"/quizzes/"+quiz.ID+"/join", map[string]any{"name": "Alice"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("join: status %d", resp.StatusCode)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=" + quiz.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var msg struct {
			Type    string `json:"type"`
			Payload struct {
				QuizID   string          `json:"quizId"`
				Rankings []domain.Player `json:"rankings"`
			} `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type != "rankings" {
			continue
		}
		if len(msg.Payload.Rankings) == 0 {
			continue
		}
		if msg.Payload.QuizID != quiz.ID || msg.Payload.Rankings[0].Name != "Alice" {
			t.Fatalf("unexpected rankings message: %+v", msg)
		}
		return
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=nope"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %+v", msg)
	}
}
