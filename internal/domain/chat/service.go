package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
	"chat-server/internal/domain/tool"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/infrastructure/observability"
)

// rateLimitWindow is the sliding window for the per-user message ceiling.
const rateLimitWindow = 24 * time.Hour

// TurnRunner drives one model turn. Satisfied by tool.Orchestrator.
type TurnRunner interface {
	Execute(ctx context.Context, params tool.ExecuteParams) (*tool.ExecuteResult, error)
}

// ProjectContextBuilder supplies the project portion of the system prompt.
type ProjectContextBuilder interface {
	BuildContext(ctx context.Context, projectID string, relatedChatTitles []string) (string, error)
}

// TitleEnqueuer schedules background title generation for a new chat.
type TitleEnqueuer interface {
	EnqueueTitleTask(ctx context.Context, chatID, userID, prompt string) error
}

// Config carries the service's tunables.
type Config struct {
	// TurnTimeout bounds a turn's wall clock, detached from the client
	// connection.
	TurnTimeout time.Duration

	// BackfillWindow is how recent the last assistant message must be for the
	// resume path to replay it.
	BackfillWindow time.Duration

	Entitlements llm.Entitlements
}

func (c *Config) applyDefaults() {
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 60 * time.Second
	}
	if c.BackfillWindow <= 0 {
		c.BackfillWindow = 15 * time.Second
	}
	if c.Entitlements.MaxMessagesPerDay == 0 {
		c.Entitlements = llm.DefaultEntitlements
	}
}

// Service owns the chat turn lifecycle.
type Service struct {
	chats    Repository
	messages MessageRepository
	streams  StreamRepository
	votes    VoteRepository

	runner   TurnRunner
	tools    *tool.Registry
	registry stream.Handle
	projects ProjectContextBuilder
	titles   TitleEnqueuer

	cfg Config
	log zerolog.Logger
}

// NewService wires the chat service.
func NewService(
	chats Repository,
	messages MessageRepository,
	streams StreamRepository,
	votes VoteRepository,
	runner TurnRunner,
	tools *tool.Registry,
	registry stream.Handle,
	projects ProjectContextBuilder,
	titles TitleEnqueuer,
	cfg Config,
	log zerolog.Logger,
) *Service {
	cfg.applyDefaults()
	return &Service{
		chats:    chats,
		messages: messages,
		streams:  streams,
		votes:    votes,
		runner:   runner,
		tools:    tools,
		registry: registry,
		projects: projects,
		titles:   titles,
		cfg:      cfg,
		log:      log.With().Str("component", "chat-service").Logger(),
	}
}

// SubmitParams is one incoming chat turn.
type SubmitParams struct {
	ChatID     string
	Message    Message
	Model      string
	Visibility Visibility
	UserID     string
	Hints      llm.RequestHints

	// Output receives the turn's events as they happen. It is typically the
	// caller's SSE connection.
	Output stream.Writer
}

// SubmitResult reports the finished turn.
type SubmitResult struct {
	Chat      *Chat
	Assistant *Message
	StreamID  string
	Steps     int
}

// Submit runs one chat turn end to end: access checks, user message append,
// stream handle creation, the streamed model turn, and assistant persistence.
// It returns after the turn completed or failed; events are emitted to
// params.Output along the way.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	if params.UserID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "chat", "authentication required")
	}

	if err := s.checkRateLimit(ctx, params.UserID); err != nil {
		return nil, err
	}

	conversation, err := s.getOrCreateChat(ctx, params)
	if err != nil {
		return nil, err
	}

	userMessage := params.Message
	userMessage.ChatID = conversation.ID
	userMessage.Role = RoleUser
	userMessage.CreatedAt = time.Now()
	if err := s.messages.Append(ctx, []*Message{&userMessage}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	// The handle is recorded before the first model byte so a reconnecting
	// client can always discover the in-flight stream.
	streamID := uuid.NewString()
	if err := s.streams.Create(ctx, streamID, conversation.ID); err != nil {
		return nil, fmt.Errorf("create stream handle: %w", err)
	}

	history, err := s.messages.ListByChatID(ctx, conversation.ID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	systemPrompt, err := s.buildSystemPrompt(ctx, conversation, params)
	if err != nil {
		return nil, err
	}

	trimmed := llm.TrimMessages(toModelMessages(systemPrompt, history), llm.DefaultContextLength)
	if trimmed.TrimmedCount > 0 {
		s.log.Debug().
			Str("chat_id", conversation.ID).
			Int("trimmed", trimmed.TrimmedCount).
			Int("estimated_tokens", trimmed.EstimatedTokens).
			Msg("history trimmed to fit context window")
	}

	// The turn outlives the client connection: disconnects must not abort
	// persistence mid-turn.
	turnCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TurnTimeout)
	defer cancel()

	turnCtx, span := observability.StartTurnSpan(turnCtx, conversation.ID, streamID, params.Model)
	defer span.End()

	// Every path past this point ends in finish or finishWithError, so a
	// registered producer is always closed.
	output, producer := s.buildOutput(ctx, streamID, params.Output)

	started := time.Now()
	result, err := s.runner.Execute(turnCtx, tool.ExecuteParams{
		Model:    params.Model,
		Messages: trimmed.Messages,
		Tools:    s.tools,
		UserID:   params.UserID,
		Output:   output,
	})
	if err != nil {
		s.finishWithError(output, producer, err)
		observability.RecordError(span, err)
		metrics.RecordTurn(params.Model, "error", time.Since(started).Seconds())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "chat", "turn timed out", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "chat", "model turn failed", err)
	}

	assistant := &Message{
		ID:        uuid.NewString(),
		ChatID:    conversation.ID,
		Role:      RoleAssistant,
		Parts:     toChatParts(result.Parts),
		CreatedAt: time.Now(),
	}
	if err := s.messages.Append(turnCtx, []*Message{assistant}); err != nil {
		// The client already has the content; losing the row is logged, not
		// surfaced as a failed turn.
		s.log.Error().Err(err).
			Str("chat_id", conversation.ID).
			Str("stream_id", streamID).
			Msg("assistant message persistence failed")
	}

	s.finish(output, producer, assistant)
	metrics.RecordTurn(params.Model, "success", time.Since(started).Seconds())
	s.recordToolMetrics(result.Executions)

	return &SubmitResult{
		Chat:      conversation,
		Assistant: assistant,
		StreamID:  streamID,
		Steps:     result.Steps,
	}, nil
}

func (s *Service) checkRateLimit(ctx context.Context, userID string) error {
	count, err := s.messages.CountByUserSince(ctx, userID, time.Now().Add(-rateLimitWindow))
	if err != nil {
		return fmt.Errorf("count recent messages: %w", err)
	}
	if count > s.cfg.Entitlements.MaxMessagesPerDay {
		return apperrors.New(apperrors.CodeRateLimit, "chat", "daily message limit reached")
	}
	return nil
}

func (s *Service) getOrCreateChat(ctx context.Context, params SubmitParams) (*Chat, error) {
	existing, err := s.chats.FindByID(ctx, params.ChatID)
	if err == nil {
		if existing.UserID != params.UserID {
			return nil, apperrors.New(apperrors.CodeForbidden, "chat", "not the chat owner")
		}
		return existing, nil
	}
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return nil, fmt.Errorf("find chat: %w", err)
	}

	now := time.Now()
	visibility := params.Visibility
	if !visibility.Valid() {
		visibility = VisibilityPrivate
	}
	created := &Chat{
		ID:         params.ChatID,
		UserID:     params.UserID,
		Title:      FallbackTitle(params.Message),
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.chats.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	if s.titles != nil {
		if prompt := params.Message.Text(); prompt != "" {
			if err := s.titles.EnqueueTitleTask(ctx, created.ID, params.UserID, prompt); err != nil {
				s.log.Warn().Err(err).Str("chat_id", created.ID).Msg("title task enqueue failed")
			}
		}
	}

	return created, nil
}

// buildOutput fans the turn's events out to the caller and, when the registry
// is available, to a registry producer resumable from other connections.
func (s *Service) buildOutput(ctx context.Context, streamID string, client stream.Writer) (stream.Writer, stream.Producer) {
	if !s.registry.Ok() {
		return client, nil
	}
	producer, err := s.registry.Registry().NewProducer(ctx, streamID)
	if err != nil {
		s.log.Warn().Err(err).Str("stream_id", streamID).Msg("registry producer unavailable, streaming directly")
		return client, nil
	}
	return newFanout(client, producer), producer
}

func (s *Service) buildSystemPrompt(ctx context.Context, conversation *Chat, params SubmitParams) (string, error) {
	projectContext := ""
	if conversation.ProjectID != nil && s.projects != nil {
		siblings, err := s.chats.ListByProject(ctx, *conversation.ProjectID)
		if err != nil {
			s.log.Warn().Err(err).Str("project_id", *conversation.ProjectID).Msg("listing project chats failed")
		}
		titles := make([]string, 0, len(siblings))
		for _, sibling := range siblings {
			if sibling.ID == conversation.ID {
				continue
			}
			titles = append(titles, sibling.Title)
		}
		projectContext, err = s.projects.BuildContext(ctx, *conversation.ProjectID, titles)
		if err != nil {
			s.log.Warn().Err(err).Str("project_id", *conversation.ProjectID).Msg("project context build failed")
			projectContext = ""
		}
	}
	return llm.SystemPrompt(params.Model, params.Hints, projectContext), nil
}

func (s *Service) finish(output stream.Writer, producer stream.Producer, assistant *Message) {
	output.Send(stream.NewEvent(stream.EventFinish, map[string]string{"messageId": assistant.ID}))
	if producer != nil {
		producer.Close()
	}
}

func (s *Service) finishWithError(output stream.Writer, producer stream.Producer, err error) {
	output.Send(stream.NewEvent(stream.EventError, map[string]string{"error": apperrors.PublicMessage(err)}))
	output.Send(stream.NewEvent(stream.EventFinish, map[string]string{}))
	if producer != nil {
		producer.Close()
	}
}

func (s *Service) recordToolMetrics(executions []tool.Execution) {
	for _, execution := range executions {
		metrics.RecordToolCall(execution.ToolName, execution.Status)
	}
}

// fanout duplicates events to several writers in order.
type fanout struct {
	writers []stream.Writer
}

func newFanout(writers ...stream.Writer) *fanout {
	return &fanout{writers: writers}
}

func (f *fanout) Send(event stream.Event) {
	for _, w := range f.writers {
		w.Send(event)
	}
}

func toModelMessages(systemPrompt string, history []*Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(history)+1)
	if systemPrompt != "" {
		out = append(out, llm.ChatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		text := m.Text()
		if text == "" {
			continue
		}
		out = append(out, llm.ChatMessage{Role: string(m.Role), Content: text})
	}
	return out
}

func toChatParts(parts []tool.Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		out = append(out, Part{
			Type:       p.Type,
			Text:       p.Text,
			ToolCallID: p.ToolCallID,
			ToolName:   p.ToolName,
			Arguments:  p.Arguments,
			Result:     p.Result,
		})
	}
	return out
}
