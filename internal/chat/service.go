package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/playlink/llm-server/internal/ai"
	"github.com/playlink/llm-server/internal/common"
)

var ErrContentRequired = errors.New("content required")

// UnknownModelError is returned when a requested model belongs to no catalog
// provider. Its message enumerates every allowed model, in catalog order.
type UnknownModelError struct {
	Model   string
	Allowed []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("invalid model %q, allowed models: %s", e.Model, strings.Join(e.Allowed, ", "))
}

type Service struct {
	repo              *Repo
	registry          *ai.Registry
	catalog           *ai.Catalog
	contextWindowSize int
}

func NewService(repo *Repo, registry *ai.Registry, catalog *ai.Catalog, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{repo: repo, registry: registry, catalog: catalog, contextWindowSize: contextWindowSize}
}

// CreateSession allocates a fresh session with an empty history.
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	session := &Session{SessionID: sid}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// History returns the full turn sequence of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, sessionID)
}

// resolveProvider maps a sanitized config to a (provider, model) pair. An
// absent model name selects the documented defaults.
func (s *Service) resolveProvider(cfg ai.GenConfig) (string, string, error) {
	if cfg.Model == "" {
		return ai.DefaultProvider, ai.DefaultModel, nil
	}
	providerName, ok := s.catalog.ResolveModel(cfg.Model)
	if !ok {
		return "", "", &UnknownModelError{Model: cfg.Model, Allowed: s.catalog.AllowedModels()}
	}
	return providerName, cfg.Model, nil
}

// SendMessage routes one chat message: validate, sanitize config, resolve the
// provider, dispatch, then append the user/assistant turn pair. The session
// is mutated only after the backend call succeeds, so a failed dispatch never
// leaves an orphaned user turn.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string, rawCfg map[string]any) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}

	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	cfg := ai.ParseGenConfig(rawCfg)

	providerName, model, err := s.resolveProvider(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(ctx, providerName, model)
	if err != nil {
		// catalog/registry mismatch; validation already passed
		return nil, fmt.Errorf("resolve provider %s: %w", providerName, err)
	}

	// conversational context: recent history plus the new user message
	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, sessionID, s.contextWindowSize)
	if err != nil {
		return nil, err
	}
	providerMsgs := make([]ai.Message, 0, len(recentDesc)+1)
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		providerMsgs = append(providerMsgs, ai.Message{Role: m.Role, Content: m.Content})
	}
	providerMsgs = append(providerMsgs, ai.Message{Role: RoleUser, Content: content})

	reply, err := provider.Chat(ctx, providerMsgs, cfg.Options)
	if err != nil {
		return nil, &ai.BackendError{Provider: providerName, Err: err}
	}

	userMsg := &Message{
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   content,
	}
	assistantMsg := &Message{
		SessionID: sessionID,
		Role:      RoleAssistant,
		Content:   reply,
	}
	if err := s.repo.InsertTurnPair(ctx, userMsg, assistantMsg); err != nil {
		return nil, err
	}

	return assistantMsg, nil
}

// CreateJob validates and persists an async chat job; the caller is expected
// to publish the returned job id to the queue.
func (s *Service) CreateJob(ctx context.Context, sessionID, content string, rawCfg map[string]any) (*Job, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	// model validation happens up front so the caller gets a 400, not a
	// failed job
	cfg := ai.ParseGenConfig(rawCfg)
	if _, _, err := s.resolveProvider(cfg); err != nil {
		return nil, err
	}

	var cfgJSON string
	if len(rawCfg) > 0 {
		b, err := json.Marshal(rawCfg)
		if err != nil {
			return nil, err
		}
		cfgJSON = string(b)
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	j := &Job{
		ID:        jobID,
		SessionID: sessionID,
		Prompt:    content,
		Config:    cfgJSON,
		Status:    JobQueued,
	}
	if err := s.repo.CreateJob(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// ProcessJob runs one queued job to completion, recording the outcome on the
// job row. Returning a non-nil error signals the consumer to dead-letter the
// delivery.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	var rawCfg map[string]any
	if j.Config != "" {
		if err := json.Unmarshal([]byte(j.Config), &rawCfg); err != nil {
			_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
			return err
		}
	}

	assistantMsg, err := s.SendMessage(ctx, j.SessionID, j.Prompt, rawCfg)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	return s.repo.MarkJobSucceeded(ctx, jobID, assistantMsg.ID)
}
