package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/playlink/llm-server/internal/ai"
)

type recordingProvider struct {
	last     []ai.Message
	lastOpts ai.Options
	reply    string
	err      error
}

func (p *recordingProvider) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	_ = ctx
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	p.lastOpts = opts
	if p.err != nil {
		return "", p.err
	}
	if p.reply == "" {
		return "ok", nil
	}
	return p.reply, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Message{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, prov ai.Provider) (*Service, *Repo) {
	t.Helper()
	db := openTestDB(t)
	repo := NewRepo(db)

	reg := ai.NewRegistry()
	reg.Register(ai.DefaultProvider, func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		_ = model
		return prov, nil
	})

	return NewService(repo, reg, ai.DefaultCatalog(), 20), repo
}

func TestCreateSession_EmptyHistory(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	sess, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.SessionID == "" {
		t.Fatalf("expected a session id")
	}

	msgs, err := svc.History(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(msgs))
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	_, err := svc.History(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestSendMessage_WritesUserAndAssistantPair(t *testing.T) {
	prov := &recordingProvider{reply: "Hello"}
	svc, _ := newTestService(t, prov)

	sess, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	reply, err := svc.SendMessage(context.Background(), sess.SessionID, "Hi", nil)
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != "Hello" {
		t.Fatalf("unexpected reply: role=%q content=%q", reply.Role, reply.Content)
	}
	if reply.ID == 0 {
		t.Fatalf("expected assistant message id to be set")
	}

	msgs, err := svc.History(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Hi" {
		t.Fatalf("unexpected user msg: role=%q content=%q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "Hello" {
		t.Fatalf("unexpected assistant msg: role=%q content=%q", msgs[1].Role, msgs[1].Content)
	}
}

func TestSendMessage_BlankContent(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	sess, _ := svc.CreateSession(context.Background())

	_, err := svc.SendMessage(context.Background(), sess.SessionID, "   ", nil)
	if !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}

	msgs, _ := svc.History(context.Background(), sess.SessionID)
	if len(msgs) != 0 {
		t.Fatalf("expected no mutation on validation failure, got %d messages", len(msgs))
	}
}

func TestSendMessage_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	_, err := svc.SendMessage(context.Background(), "missing", "Hi", nil)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestSendMessage_BackendFailureAppendsNothing(t *testing.T) {
	prov := &recordingProvider{err: errors.New("connection refused")}
	svc, _ := newTestService(t, prov)

	sess, _ := svc.CreateSession(context.Background())

	_, err := svc.SendMessage(context.Background(), sess.SessionID, "Hi", nil)
	var backend *ai.BackendError
	if !errors.As(err, &backend) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backend.Provider != ai.DefaultProvider {
		t.Fatalf("expected provider %q in error, got %q", ai.DefaultProvider, backend.Provider)
	}

	msgs, _ := svc.History(context.Background(), sess.SessionID)
	if len(msgs) != 0 {
		t.Fatalf("backend failure must not leave an orphaned user turn, got %d messages", len(msgs))
	}
}

func TestSendMessage_UnknownModelEnumeratesAllowed(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	sess, _ := svc.CreateSession(context.Background())

	_, err := svc.SendMessage(context.Background(), sess.SessionID, "Hi", map[string]any{"model": "gpt-9"})
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
	for _, m := range ai.DefaultCatalog().AllowedModels() {
		if !strings.Contains(err.Error(), m) {
			t.Fatalf("error %q missing allowed model %q", err.Error(), m)
		}
	}

	msgs, _ := svc.History(context.Background(), sess.SessionID)
	if len(msgs) != 0 {
		t.Fatalf("expected no mutation on model validation failure, got %d messages", len(msgs))
	}
}

func TestSendMessage_RoutesModelToProvider(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	ollama := &recordingProvider{reply: "from ollama"}
	hf := &recordingProvider{reply: "from hf"}

	reg := ai.NewRegistry()
	reg.Register(ai.ProviderOllama, func(ctx context.Context, model string) (ai.Provider, error) {
		return ollama, nil
	})
	reg.Register(ai.ProviderHuggingFace, func(ctx context.Context, model string) (ai.Provider, error) {
		return hf, nil
	})

	svc := NewService(repo, reg, ai.DefaultCatalog(), 20)

	sess, _ := svc.CreateSession(context.Background())

	reply, err := svc.SendMessage(context.Background(), sess.SessionID, "Hi", map[string]any{
		"model": "deepseek-ai/DeepSeek-R1-0528",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if reply.Content != "from hf" {
		t.Fatalf("expected hugging face dispatch, got %q", reply.Content)
	}
	if len(ollama.last) != 0 {
		t.Fatalf("ollama should not have been called")
	}
}

func TestSendMessage_TemperatureCoercedAndPassedThrough(t *testing.T) {
	prov := &recordingProvider{}
	svc, _ := newTestService(t, prov)

	sess, _ := svc.CreateSession(context.Background())

	_, err := svc.SendMessage(context.Background(), sess.SessionID, "Hi", map[string]any{
		"temperature": "0.7",
		"top_p":       0.5,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if prov.lastOpts.Temperature == nil || *prov.lastOpts.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", prov.lastOpts.Temperature)
	}
	if prov.lastOpts.Extra["top_p"] != 0.5 {
		t.Fatalf("expected top_p passthrough, got %v", prov.lastOpts.Extra)
	}

	// unparseable temperature drops silently, request still succeeds
	_, err = svc.SendMessage(context.Background(), sess.SessionID, "Again", map[string]any{"temperature": "abc"})
	if err != nil {
		t.Fatalf("send message with bad temperature: %v", err)
	}
	if prov.lastOpts.Temperature != nil {
		t.Fatalf("expected dropped temperature, got %v", *prov.lastOpts.Temperature)
	}
}

func TestSendMessage_UsesContextWindow(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	prov := &recordingProvider{}
	reg := ai.NewRegistry()
	reg.Register(ai.DefaultProvider, func(ctx context.Context, model string) (ai.Provider, error) {
		return prov, nil
	})

	window := 3
	svc := NewService(repo, reg, ai.DefaultCatalog(), window)

	sess, _ := svc.CreateSession(context.Background())

	// seed history directly
	for i := 0; i < 5; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		if err := db.Create(&Message{SessionID: sess.SessionID, Role: role, Content: "seed"}).Error; err != nil {
			t.Fatalf("seed msg %d: %v", i, err)
		}
	}

	if _, err := svc.SendMessage(context.Background(), sess.SessionID, "new", nil); err != nil {
		t.Fatalf("send message: %v", err)
	}

	// window of stored turns plus the new user message
	if len(prov.last) != window+1 {
		t.Fatalf("expected provider to receive %d messages, got %d", window+1, len(prov.last))
	}
	last := prov.last[len(prov.last)-1]
	if last.Role != RoleUser || last.Content != "new" {
		t.Fatalf("expected last provider msg to be the new user msg, got role=%q content=%q", last.Role, last.Content)
	}
}

func TestProcessJob_Success(t *testing.T) {
	prov := &recordingProvider{reply: "done"}
	svc, repo := newTestService(t, prov)

	sess, _ := svc.CreateSession(context.Background())

	job, err := svc.CreateJob(context.Background(), sess.SessionID, "Hi", map[string]any{"temperature": 0.1})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != JobQueued {
		t.Fatalf("expected queued job, got %s", job.Status)
	}

	if err := svc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}

	got, err := repo.GetJobByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("expected succeeded, got %s (err=%v)", got.Status, got.Error)
	}
	if got.ResultMessageID == nil {
		t.Fatalf("expected result message id")
	}

	msgs, _ := svc.History(context.Background(), sess.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after job, got %d", len(msgs))
	}
}

func TestProcessJob_BackendFailureMarksFailed(t *testing.T) {
	prov := &recordingProvider{}
	svc, repo := newTestService(t, prov)

	sess, _ := svc.CreateSession(context.Background())

	job, err := svc.CreateJob(context.Background(), sess.SessionID, "Hi", nil)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	prov.err = errors.New("backend down")
	if err := svc.ProcessJob(context.Background(), job.ID); err == nil {
		t.Fatalf("expected processing error")
	}

	got, err := repo.GetJobByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Fatalf("expected recorded error")
	}

	msgs, _ := svc.History(context.Background(), sess.SessionID)
	if len(msgs) != 0 {
		t.Fatalf("failed job must not append turns, got %d", len(msgs))
	}
}

func TestCreateJob_ValidatesUpFront(t *testing.T) {
	svc, _ := newTestService(t, &recordingProvider{})

	if _, err := svc.CreateJob(context.Background(), "missing", "Hi", nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}

	sess, _ := svc.CreateSession(context.Background())

	if _, err := svc.CreateJob(context.Background(), sess.SessionID, "  ", nil); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}

	var unknown *UnknownModelError
	_, err := svc.CreateJob(context.Background(), sess.SessionID, "Hi", map[string]any{"model": "gpt-9"})
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
}
