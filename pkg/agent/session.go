package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kotoba-labs/shiftvoice/internal/log"
)

// Gemini Live API WebSocket endpoint.
const liveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// Session is a Gemini Live connection scoped to tool-call fulfillment.
type Session struct {
	cfg Config

	// WebSocket connection
	ws   *websocket.Conn
	wsMu sync.Mutex

	// Session state
	mu        sync.RWMutex
	connected bool
	closed    bool
	cancel    context.CancelFunc

	logger *slog.Logger

	// Callbacks
	onToolCalls func(batch []ToolCall)
	onError     func(err error)
}

// NewSession creates a session from the given configuration.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:    cfg,
		logger: log.Component("agent"),
	}, nil
}

// OnToolCalls sets the handler for inbound tool-call batches. Set this
// before Start; the handler must answer every call in the batch via
// SubmitResponses.
func (s *Session) OnToolCalls(fn func(batch []ToolCall)) {
	s.onToolCalls = fn
}

// OnError sets the error callback.
func (s *Session) OnError(fn func(err error)) {
	s.onError = fn
}

// Start dials the Live endpoint, declares the session and begins
// reading messages.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	_, s.cancel = context.WithCancel(ctx)

	url := fmt.Sprintf("%s?key=%s", liveURL, s.cfg.APIKey)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	var err error
	s.ws, _, err = dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("agent: failed to connect: %w", err)
	}

	s.mu.Lock()
	s.connected = true
	s.closed = false
	s.mu.Unlock()

	if err := s.sendSetup(); err != nil {
		s.Stop()
		return fmt.Errorf("agent: failed to configure session: %w", err)
	}

	go s.handleMessages()

	s.logger.Info("session connected", "model", s.cfg.Model, "voice", s.cfg.Voice)
	return nil
}

// sendSetup declares the session: model, audio response modality,
// voice, system prompt and the two schedule function declarations.
func (s *Session) sendSetup() error {
	voiceName := s.cfg.Voice
	if voiceName == "" {
		voiceName = DefaultVoice
	}

	setup := map[string]any{
		"setup": map[string]any{
			"model": s.cfg.Model,
			"generation_config": map[string]any{
				"response_modalities": []string{"AUDIO"},
				"speech_config": map[string]any{
					"voice_config": map[string]any{
						"prebuilt_voice_config": map[string]any{
							"voice_name": voiceName,
						},
					},
				},
			},
			"system_instruction": map[string]any{
				"parts": []map[string]any{
					{"text": s.cfg.SystemPrompt},
				},
			},
			"tools": []map[string]any{
				{"function_declarations": Declarations()},
			},
		},
	}

	return s.sendJSON(setup)
}

// Stop gracefully shuts down the session.
func (s *Session) Stop() error {
	s.mu.Lock()
	s.closed = true
	s.connected = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if s.ws != nil {
		return s.ws.Close()
	}
	return nil
}

// IsConnected returns true if connected and ready.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && !s.closed
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// SubmitResponses returns a batch of structured tool results to the
// model. Every call of the inbound batch must be present.
func (s *Session) SubmitResponses(responses []ToolResponse) error {
	if len(responses) == 0 {
		return nil
	}

	functionResponses := make([]map[string]any, 0, len(responses))
	for _, r := range responses {
		functionResponses = append(functionResponses, map[string]any{
			"id":   r.ID,
			"name": r.Name,
			"response": map[string]any{
				"output": r.Output,
			},
		})
	}

	return s.sendJSON(map[string]any{
		"tool_response": map[string]any{
			"function_responses": functionResponses,
		},
	})
}

// handleMessages processes incoming WebSocket messages.
func (s *Session) handleMessages() {
	for {
		s.mu.RLock()
		closed := s.closed
		s.mu.RUnlock()

		if closed {
			return
		}

		var msg map[string]any
		if err := s.ws.ReadJSON(&msg); err != nil {
			s.mu.RLock()
			closed := s.closed
			s.mu.RUnlock()

			if !closed && s.onError != nil {
				s.onError(err)
			}
			return
		}

		s.handleMessage(msg)
	}
}

// handleMessage processes a single Live API message. The session only
// reacts to tool-call traffic; audio and transcript content belongs to
// the transport layer and is logged at debug level only.
func (s *Session) handleMessage(msg map[string]any) {
	if _, ok := msg["setupComplete"]; ok {
		s.logger.Info("session ready")
		return
	}

	if toolCall, ok := msg["toolCall"].(map[string]any); ok {
		batch := parseToolCalls(toolCall)
		if len(batch) == 0 {
			return
		}
		s.logger.Debug("tool-call batch received", "calls", len(batch))
		if s.onToolCalls != nil {
			s.onToolCalls(batch)
		}
		return
	}

	if _, ok := msg["toolCallCancellation"]; ok {
		s.logger.Debug("tool call cancelled by model")
		return
	}

	s.logger.Debug("unhandled session message", "keys", messageKeys(msg))
}

// parseToolCalls extracts the batch of function calls from a toolCall
// message. Calls with no usable name are dropped.
func parseToolCalls(toolCall map[string]any) []ToolCall {
	functionCalls, ok := toolCall["functionCalls"].([]any)
	if !ok {
		return nil
	}

	batch := make([]ToolCall, 0, len(functionCalls))
	for _, fc := range functionCalls {
		fcMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}

		name, _ := fcMap["name"].(string)
		if name == "" {
			continue
		}
		id, _ := fcMap["id"].(string)
		args, _ := fcMap["args"].(map[string]any)

		batch = append(batch, ToolCall{ID: id, Name: name, Args: args})
	}
	return batch
}

func messageKeys(msg map[string]any) []string {
	keys := make([]string, 0, len(msg))
	for k := range msg {
		keys = append(keys, k)
	}
	return keys
}

// sendJSON sends a JSON message over the WebSocket.
func (s *Session) sendJSON(v any) error {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	if s.ws == nil {
		return ErrNotConnected
	}

	return s.ws.WriteJSON(v)
}
