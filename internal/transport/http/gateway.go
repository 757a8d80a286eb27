// Package http is the host-facing gateway: quiz creation and join over
// JSON, a QR join link, and a websocket feed of live rankings.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"quizlive/internal/domain"
	"quizlive/internal/gamesync"
	"quizlive/internal/joinlink"
	"quizlive/internal/metrics"
	"quizlive/internal/session"
	"quizlive/internal/store"
)

// Gateway wires the engine packages behind HTTP. Each websocket connection
// runs its own session store and poller, the same way a browser client
// would.
type Gateway struct {
	backend      store.Backend
	notifier     store.Notifier
	log          *logrus.Entry
	baseURL      string
	qrSize       int
	pollInterval time.Duration
	upgrader     websocket.Upgrader
}

func NewGateway(backend store.Backend, notifier store.Notifier, log *logrus.Entry, baseURL string, qrSize int, pollInterval time.Duration) *Gateway {
	return &Gateway{
		backend:      backend,
		notifier:     notifier,
		log:          log,
		baseURL:      baseURL,
		qrSize:       qrSize,
		pollInterval: pollInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the route table.
func (g *Gateway) Router() http.Handler {
	router := httprouter.New()
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.POST("/quizzes", g.createQuiz)
	router.GET("/quizzes/:id", g.getQuiz)
	router.POST("/quizzes/:id/join", g.joinQuiz)
	router.POST("/quizzes/:id/start", g.startQuiz)
	router.GET("/quizzes/:id/qr", g.qr)
	router.HandlerFunc(http.MethodGet, "/ws", g.serveWS)
	return router
}

func (g *Gateway) newSyncer() *gamesync.Syncer {
	return gamesync.New(g.backend, g.notifier, session.NewStore(), g.log)
}

func (g *Gateway) createQuiz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in domain.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	if err := domain.ValidateQuizInput(in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	quiz, err := g.newSyncer().CreateQuiz(r.Context(), in)
	if err != nil {
		g.log.WithError(err).Error("create quiz failed")
		writeError(w, http.StatusBadGateway, "quiz could not be saved, please retry")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"quiz":    quiz,
		"joinUrl": joinlink.URL(g.baseURL, quiz.ID),
	})
}

func (g *Gateway) getQuiz(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	quiz, err := g.newSyncer().GetQuiz(r.Context(), ps.ByName("id"))
	if err != nil {
		g.log.WithError(err).Error("get quiz failed")
		writeError(w, http.StatusBadGateway, "quiz could not be loaded")
		return
	}
	if quiz == nil {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (g *Gateway) joinQuiz(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in struct {
		Name   string         `json:"name"`
		Avatar *domain.Avatar `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid join payload")
		return
	}
	player, err := g.newSyncer().JoinQuiz(r.Context(), ps.ByName("id"), domain.PlayerInput{Name: in.Name, Avatar: in.Avatar})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, player)
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, domain.ErrQuizFull),
		errors.Is(err, domain.ErrNameTaken),
		errors.Is(err, domain.ErrQuizInProgress),
		errors.Is(err, domain.ErrQuizFinished):
		writeError(w, http.StatusConflict, err.Error())
	default:
		g.log.WithError(err).Error("join failed")
		writeError(w, http.StatusBadGateway, "join could not be saved, please retry")
	}
}

func (g *Gateway) startQuiz(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	g.newSyncer().StartQuiz(r.Context(), ps.ByName("id"))
	w.WriteHeader(http.StatusAccepted)
}

func (g *Gateway) qr(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	size := g.qrSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}
	png, err := joinlink.QRPNG(g.baseURL, ps.ByName("id"), size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type rankingsPayload struct {
	QuizID   string          `json:"quizId"`
	Rankings []domain.Player `json:"rankings"`
}

// serveWS streams live rankings for one quiz. The connection owns a private
// session store plus poller, both torn down when the socket closes.
func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()
	metrics.WSConnections.Inc()

	syncer := g.newSyncer()
	quiz, err := syncer.GetQuiz(r.Context(), quizID)
	if err != nil || quiz == nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "quiz not found"}})
		return
	}
	syncer.Session().Dispatch(session.SetCurrentQuiz{Quiz: *quiz})

	updates, cancelSub := syncer.Session().Subscribe()
	defer cancelSub()

	pollCtx, cancelPoll := context.WithCancel(r.Context())
	defer cancelPoll()
	go syncer.RunPoller(pollCtx, quizID, g.pollInterval)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				g.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "rankings", Payload: rankingsPayload{QuizID: quizID, Rankings: snap.Rankings}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// The read loop exists to notice disconnects; spectators send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}
