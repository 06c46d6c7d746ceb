package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/render"
	"assessment-engine/internal/report"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Default inbound limits per connection.
const (
	DefaultMessageRate  = 20
	DefaultMessageBurst = 40
)

var errRateLimited = errors.New("rate limit exceeded")

type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int
}

func NewWSHandler(service *app.AttemptService, limit rate.Limit, burst int) *WSHandler {
	if limit <= 0 {
		limit = DefaultMessageRate
	}
	if burst <= 0 {
		burst = DefaultMessageBurst
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		limit: limit,
		burst: burst,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string          `json:"questionId"`
	Value      domain.Response `json:"value"`
}

type selectPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type flagPayload struct {
	QuestionID string `json:"questionId"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type statePayload struct {
	Snapshot app.Snapshot        `json:"snapshot"`
	Question render.QuestionView `json:"question"`
}

type resultPayload struct {
	Report report.Summary `json:"report"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one attempt per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), quizID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	c := &attemptConn{
		handler:    h,
		conn:       conn,
		session:    session,
		send:       make(chan outboundMessage[any], 16),
		writerDone: make(chan struct{}),
	}
	go c.writeLoop()
	c.follow(session)

	c.readLoop(r.Context())

	c.unfollow()
	h.service.Exit(context.Background(), c.session.ID())
	close(c.send)
	<-c.writerDone
}

// attemptConn is the per-connection state. session is owned by the read loop.
type attemptConn struct {
	handler    *WSHandler
	conn       *websocket.Conn
	session    *app.Session
	send       chan outboundMessage[any]
	writerDone chan struct{}

	stopFollow func()
}

func (c *attemptConn) writeLoop() {
	defer close(c.writerDone)
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			// unblock the read loop
			_ = c.conn.Close()
			break
		}
	}
	for range c.send {
	}
}

func (c *attemptConn) emit(msgType string, payload any) {
	c.send <- outboundMessage[any]{Type: msgType, Payload: payload}
}

func (c *attemptConn) emitError(err error) {
	c.emit("error", errorPayload{Message: err.Error()})
}

// follow forwards countdown ticks and the final result of session.
func (c *attemptConn) follow(session *app.Session) {
	updates, cancel := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		reported := false
		for snap := range updates {
			if snap.Phase == app.PhaseSubmitted {
				if !reported && snap.Result != nil {
					reported = true
					c.emit("result", resultPayload{Report: c.report(session, *snap.Result).Report()})
				}
				continue
			}
			c.emit("state", stateOf(session.Quiz(), snap))
		}
	}()

	var once sync.Once
	c.stopFollow = func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (c *attemptConn) unfollow() {
	if c.stopFollow != nil {
		c.stopFollow()
	}
}

func (c *attemptConn) readLoop(ctx context.Context) {
	limiter := rate.NewLimiter(c.handler.limit, c.handler.burst)
	for {
		var inbound inboundMessage
		if err := c.conn.ReadJSON(&inbound); err != nil {
			return
		}
		if !limiter.Allow() {
			c.emitError(errRateLimited)
			continue
		}
		if exit := c.dispatch(ctx, inbound); exit {
			return
		}
	}
}

// dispatch applies one inbound command and reports whether the connection should close.
func (c *attemptConn) dispatch(ctx context.Context, inbound inboundMessage) bool {
	s := c.session
	var err error

	switch inbound.Type {
	case "answer":
		var p answerPayload
		if err = decodePayload(inbound.Payload, &p); err == nil {
			err = s.SetAnswer(p.QuestionID, p.Value)
		}
	case "select":
		var p selectPayload
		if err = decodePayload(inbound.Payload, &p); err == nil {
			err = s.Select(p.QuestionID, p.OptionID)
		}
	case "flag":
		var p flagPayload
		if err = decodePayload(inbound.Payload, &p); err == nil {
			_, err = s.ToggleFlag(p.QuestionID)
		}
	case "goto":
		var p gotoPayload
		if err = decodePayload(inbound.Payload, &p); err == nil {
			_, err = s.GoTo(p.Index)
		}
	case "next":
		_, err = s.Next()
	case "previous":
		_, err = s.Previous()
	case "submit":
		// the result reaches the client through the subscription
		if _, err = c.handler.service.Submit(ctx, s.ID()); err == nil {
			return false
		}
	case "retry":
		result, ok := s.Result()
		if !ok {
			err = domain.ErrAttemptInProgress
			break
		}
		if err = c.report(s, result).Retry(); err == nil {
			return false
		}
	case "exit":
		result, ok := s.Result()
		if !ok {
			c.emit("exited", struct{}{})
			return true
		}
		if err = c.report(s, result).Exit(); err == nil {
			return true
		}
	default:
		c.emit("error", errorPayload{Message: "unsupported message type"})
		return false
	}

	if err != nil {
		c.emitError(err)
		return false
	}
	c.emit("state", stateOf(s.Quiz(), s.Snapshot()))
	return false
}

// report wires the results screen actions to the attempt service.
func (c *attemptConn) report(session *app.Session, result domain.AttemptResult) *report.Reporter {
	return report.New(session.Quiz(), result, report.Actions{
		Retry: func() error {
			next, err := c.handler.service.Retry(context.Background(), session.ID())
			if err != nil {
				return err
			}
			c.unfollow()
			c.session = next
			c.follow(next)
			return nil
		},
		Exit: func() error {
			c.emit("exited", struct{}{})
			return nil
		},
	})
}

func stateOf(quiz domain.Quiz, snap app.Snapshot) statePayload {
	payload := statePayload{Snapshot: snap}
	if q, ok := quiz.Question(snap.CurrentQuestionID()); ok {
		payload.Question = render.Question(q, snap.Answers[q.Head().ID], false)
	}
	return payload
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}
