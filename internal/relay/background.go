package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ppiankov/truthguard/internal/model"
)

const (
	// MessageAnalyzeText asks the background to analyze Message.Text
	MessageAnalyzeText = "analyzeText"
	// ActionAnalyzeSelection is sent from the context menu to the page controller
	ActionAnalyzeSelection = "analyzeSelection"
)

// ErrUnknownMessage is reported for message types the background does not handle
var ErrUnknownMessage = errors.New("unknown message type")

// Message is sent from the page controller to the background
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is the background's answer to a Message
type Response struct {
	Success bool                  `json:"success"`
	Data    *model.AnalysisResult `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Command is sent from the context menu to the page controller
type Command struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

// Backend is the part of Client the background needs
type Backend interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResult, error)
}

// Background relays analysis requests to the backend. It does not retry;
// the page controller owns retries for messaging failures.
type Background struct {
	backend Backend
}

// NewBackground creates a background relay
func NewBackground(backend Backend) *Background {
	return &Background{backend: backend}
}

// Handle answers one message. Backend failures are reported in the Response,
// never as a Go error.
func (b *Background) Handle(ctx context.Context, msg Message) Response {
	if msg.Type != MessageAnalyzeText {
		return Response{Success: false, Error: ErrUnknownMessage.Error() + ": " + msg.Type}
	}

	result, err := b.backend.Analyze(ctx, msg.Text)
	if err != nil {
		slog.Warn("Backend analysis failed", "error", err)
		return Response{Success: false, Error: err.Error()}
	}
	return Response{Success: true, Data: result}
}
