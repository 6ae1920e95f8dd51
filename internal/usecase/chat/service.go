package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
)

const systemPromptTemplate = `You are an intelligent knowledge assistant for an enterprise document management system.
Your task is to answer questions based on the provided document context.
If the answer is not found in the context, say so clearly.
Always cite which document the information comes from when possible.

Context from documents:
`

// History sizes: turns replayed into the prompt, and turns returned by Service.History.
const (
	PromptTurns  = 10
	HistoryTurns = 100
)

// SystemPrompt renders the system message for a retrieval context block.
func SystemPrompt(contextBlock string) string {
	return systemPromptTemplate + contextBlock
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Response  string
	SessionID string
	Sources   []result.Source
}

// Service answers questions over the indexed corpus and keeps per-session history.
type Service struct {
	retriever Retriever
	completer Completer
	history   History
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a chat service. completer can be nil; Ask then fails with ErrNotImplemented.
func New(retriever Retriever, completer Completer, history History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever: retriever,
		completer: completer,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Enabled reports whether a completion provider is configured.
func (s *Service) Enabled() bool { return s.completer != nil }

// Ask retrieves context for message and asks the completion provider with the last PromptTurns
// turns of the session replayed ahead of message. An empty sessionID gets a new UUID. The
// question and the answer are appended to the session once the provider has answered.
func (s *Service) Ask(ctx context.Context, message, sessionID string) (Reply, error) {
	if s.completer == nil {
		return Reply{}, fmt.Errorf("chat completion is not configured: %w", domain.ErrNotImplemented)
	}
	if strings.TrimSpace(message) == "" {
		return Reply{}, fmt.Errorf("message is required: %w", domain.ErrInvalidQuery)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := domchat.ValidateSessionID(sessionID); err != nil {
		return Reply{}, err
	}
	ctx, log := logpkg.Scoped(ctx, s.logger, zap.String("session_id", sessionID))

	cc, err := s.retriever.ChatContext(ctx, message)
	if err != nil {
		return Reply{}, fmt.Errorf("chat context: %w", err)
	}
	earlier, err := s.recent(ctx, sessionID, PromptTurns)
	if err != nil {
		return Reply{}, err
	}

	answer, err := s.completer.Complete(ctx, SystemPrompt(cc.Context), domchat.Transcript(earlier, message))
	if err != nil {
		log.Error("chat completion failed", zap.Error(err))
		if errors.Is(err, domain.ErrLLMProviderError) {
			return Reply{}, err
		}
		return Reply{}, fmt.Errorf("complete: %w: %w", err, domain.ErrLLMProviderError)
	}

	s.record(ctx, log, sessionID, message, answer)
	log.Debug("chat answered",
		zap.Int("history_turns", len(earlier)),
		zap.Int("sources", len(cc.Sources)),
	)

	return Reply{Response: answer, SessionID: sessionID, Sources: cc.Sources}, nil
}

// History returns the latest HistoryTurns turns of a session, oldest first. An unknown session
// has no turns.
func (s *Service) History(ctx context.Context, sessionID string) ([]domchat.Turn, error) {
	if err := domchat.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.recent(ctx, sessionID, HistoryTurns)
}

func (s *Service) recent(ctx context.Context, sessionID string, limit int) ([]domchat.Turn, error) {
	if s.history == nil {
		return nil, nil
	}
	turns, err := s.history.Recent(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return turns, nil
}

// record stores the exchange. The answer is already produced, so a storage failure is logged
// and the reply still returned.
func (s *Service) record(ctx context.Context, log *zap.Logger, sessionID, message, answer string) {
	if s.history == nil {
		return
	}
	at := s.now()
	question, _ := domchat.NewTurn(sessionID, domchat.RoleUser, message, at)
	reply, _ := domchat.NewTurn(sessionID, domchat.RoleAssistant, answer, at)
	if err := s.history.Append(ctx, question, reply); err != nil {
		log.Error("failed to record chat history", zap.Error(err))
	}
}
