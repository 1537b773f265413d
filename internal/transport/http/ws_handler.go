package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logging"
)

// DefaultRevealDelay keeps the answer highlight visible before the next question.
const DefaultRevealDelay = 2 * time.Second

// Error codes sent to the renderer.
const (
	codeOrderingViolation = "ordering_violation"
	codeInvalidChoice     = "invalid_choice"
	codeBadRequest        = "bad_request"
	codeInternal          = "internal"
)

type WSHandler struct {
	service     *app.QuizService
	upgrader    websocket.Upgrader
	revealDelay time.Duration
	logger      *slog.Logger
}

// HandlerOption customizes a WSHandler.
type HandlerOption func(*WSHandler)

func WithRevealDelay(d time.Duration) HandlerOption {
	return func(h *WSHandler) { h.revealDelay = d }
}

func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *WSHandler) { h.logger = logger }
}

func NewWSHandler(service *app.QuizService, opts ...HandlerOption) *WSHandler {
	h := &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		revealDelay: DefaultRevealDelay,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice *int `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type noticePayload struct {
	Message string        `json:"message"`
	Origin  domain.Origin `json:"origin"`
}

type finishedPayload struct {
	domain.FinalResult
	Snapshot domain.Snapshot `json:"snapshot"`
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ServeWS upgrades HTTP requests to websockets. Every connection is one
// independent quiz session, started as soon as the socket opens.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// hijacked connections outlive r.Context(), so cancel explicitly on exit
	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	sessionID := uuid.NewString()
	logger := h.logger.With("session", sessionID)

	events, cancel := h.service.Attach(ctx, sessionID)
	defer h.service.Close(ctx, sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	// revealing is set from an accepted answer until the message that ends its
	// reveal (next question or finished) has been handed to the writer.
	var revealing atomic.Bool

	go func() {
		defer close(eventsDone)
		h.forwardEvents(events, send, closeSignals, &revealing)
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	emit(outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: sessionID}})
	h.start(ctx, sessionID, emit, logger)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Choice == nil {
				emit(errorMessage("invalid answer payload", codeBadRequest))
				continue
			}
			// the player has not seen the next question yet
			if revealing.Swap(true) {
				emit(errorMessage("answer already submitted for this round", codeOrderingViolation))
				continue
			}
			// results arrive through the event stream; only rejections are answered here
			if _, err := h.service.SubmitAnswer(ctx, sessionID, *payload.Choice); err != nil {
				revealing.Store(false)
				emit(errorMessage(err.Error(), errorCode(err)))
			}
		case "restart":
			revealing.Store(false)
			h.start(ctx, sessionID, emit, logger)
		default:
			emit(errorMessage("unsupported message type", codeBadRequest))
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) start(ctx context.Context, sessionID string, emit func(outboundMessage[any]), logger *slog.Logger) {
	result, err := h.service.Start(ctx, sessionID)
	if err != nil {
		logger.Error("start session", "error", err)
		emit(errorMessage(err.Error(), errorCode(err)))
		return
	}
	if result.Notice != "" {
		emit(outboundMessage[any]{Type: "notice", Payload: noticePayload{Message: result.Notice, Origin: result.Origin}})
	}
}

// forwardEvents translates session events into renderer messages. The
// message following an answer (next question or finished) is held back for
// the reveal delay; a restart during that wait discards it.
func (h *WSHandler) forwardEvents(events <-chan domain.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}, revealing *atomic.Bool) {
	revealPending := false
	var queued *domain.Event
	for {
		var ev domain.Event
		if queued != nil {
			ev, queued = *queued, nil
		} else {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				ev = e
			case <-closeSignals:
				return
			}
		}

		endsReveal := revealPending && (ev.Type == domain.EventQuestionLoaded || ev.Type == domain.EventFinished)
		if endsReveal {
			next, open := h.holdReveal(events, closeSignals)
			if !open {
				return
			}
			if next != nil && next.Type == domain.EventLoading {
				// restarted mid-reveal: the held message belongs to the old run
				ev = *next
				endsReveal = false
			} else {
				queued = next
			}
		}

		msg, ok := eventMessage(ev)
		if !ok {
			continue
		}
		switch ev.Type {
		case domain.EventAnswerCorrect, domain.EventAnswerIncorrect:
			revealPending = true
		default:
			revealPending = false
		}
		if endsReveal {
			revealing.Store(false)
		}

		select {
		case send <- msg:
		case <-closeSignals:
			return
		}
	}
}

// holdReveal waits out the reveal delay. An event arriving first cuts the wait
// short and is returned; open is false once the connection is closing.
func (h *WSHandler) holdReveal(events <-chan domain.Event, closeSignals <-chan struct{}) (next *domain.Event, open bool) {
	if h.revealDelay <= 0 {
		return nil, true
	}
	timer := time.NewTimer(h.revealDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil, true
	case e, ok := <-events:
		if !ok {
			return nil, false
		}
		return &e, true
	case <-closeSignals:
		return nil, false
	}
}

func eventMessage(ev domain.Event) (outboundMessage[any], bool) {
	switch ev.Type {
	case domain.EventLoading:
		return outboundMessage[any]{Type: "loading", Payload: ev.Snapshot}, true
	case domain.EventQuestionLoaded:
		return outboundMessage[any]{Type: "question", Payload: ev.Snapshot}, true
	case domain.EventAnswerCorrect, domain.EventAnswerIncorrect:
		return outboundMessage[any]{Type: "answerResult", Payload: ev.Answer}, true
	case domain.EventFinished:
		final := domain.FinalResult{}
		if ev.Final != nil {
			final = *ev.Final
		}
		return outboundMessage[any]{Type: "finished", Payload: finishedPayload{FinalResult: final, Snapshot: ev.Snapshot}}, true
	}
	return outboundMessage[any]{}, false
}

func errorMessage(message, code string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message, Code: code}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderingViolation):
		return codeOrderingViolation
	case errors.Is(err, domain.ErrInvalidChoiceIndex):
		return codeInvalidChoice
	default:
		return codeInternal
	}
}
