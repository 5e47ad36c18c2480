package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docqa/config"
	"docqa/internal/adapter/registry"
	"docqa/internal/conversation"
	"docqa/internal/domain"
	"docqa/internal/index"
	"docqa/internal/port"
	"docqa/internal/quality"
)

// Orchestrator drives the full question answering flow: it keeps the
// retrieval index ready, assembles prompts from retrieved chunks and
// conversation history, and scores generated answers.
type Orchestrator struct {
	cfg       *config.Config
	dataDir   string
	ingestion *IngestionService
	idx       *index.RetrievalIndex
	registry  *registry.Bolt
	sessions  *conversation.Store
	generator port.Generator
	log       *zap.Logger
}

// NewOrchestrator wires the orchestrator. dataDir is where the index
// artifacts and registry live.
func NewOrchestrator(
	cfg *config.Config,
	dataDir string,
	ingestion *IngestionService,
	idx *index.RetrievalIndex,
	reg *registry.Bolt,
	sessions *conversation.Store,
	generator port.Generator,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		dataDir:   dataDir,
		ingestion: ingestion,
		idx:       idx,
		registry:  reg,
		sessions:  sessions,
		generator: generator,
		log:       log,
	}
}

// Upload ingests a source file and rebuilds the index from it. Uploading
// byte-identical content leaves the existing index in place. progress,
// if non-nil, tracks the embedding pass.
func (o *Orchestrator) Upload(path string, progress func(done, total int)) error {
	chunks, err := o.ingestion.Ingest(path, "")
	if err != nil {
		return err
	}
	if chunks == nil {
		// Duplicate content. The persisted index already covers it, so
		// just make sure it is loaded.
		return o.ensureIndexReady()
	}

	if err := o.idx.Build(chunks, progress); err != nil {
		return err
	}
	return o.idx.Persist(config.IndexDir(o.dataDir))
}

// Query answers a one-shot question with no conversation state.
func (o *Orchestrator) Query(ctx context.Context, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	if err := o.ensureIndexReady(); err != nil {
		return domain.Answer{}, err
	}

	return o.answer(ctx, question, "")
}

// Chat answers a question inside a session. An empty session id starts a
// new session; a malformed one is rejected before any state changes.
func (o *Orchestrator) Chat(ctx context.Context, question, sessionID string) (domain.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatAnswer{}, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("malformed session id %q: %w", sessionID, domain.ErrInvalidInput)
	}

	if err := o.ensureIndexReady(); err != nil {
		return domain.ChatAnswer{}, err
	}

	o.sessions.Prune()

	answer, err := o.answer(ctx, question, sessionID)
	if err != nil {
		return domain.ChatAnswer{}, err
	}

	// History grows only after a successful generation; a failed turn
	// leaves the session exactly as it was.
	o.sessions.Append(sessionID, domain.Message{Role: domain.RoleUser, Content: question})
	o.sessions.Append(sessionID, domain.Message{Role: domain.RoleAssistant, Content: answer.Answer})

	return domain.ChatAnswer{
		Answer:    answer,
		SessionID: sessionID,
		History:   o.sessions.History(sessionID),
	}, nil
}

// Documents lists registered document names in ingestion order.
func (o *Orchestrator) Documents() ([]string, error) {
	return o.registry.ListNames()
}

// SessionHistory returns the messages of a session, oldest first.
func (o *Orchestrator) SessionHistory(sessionID string) []domain.Message {
	return o.sessions.History(sessionID)
}

// ClearSession drops a session and reports whether it existed.
func (o *Orchestrator) ClearSession(sessionID string) bool {
	return o.sessions.Clear(sessionID)
}

// Recover loads a persisted index if one exists. Used at startup; the
// same check runs lazily on the first query otherwise.
func (o *Orchestrator) Recover() error {
	return o.ensureIndexReady()
}

// Ready reports whether the index can answer queries right now.
func (o *Orchestrator) Ready() bool {
	return o.idx.IsLoaded()
}

// ensureIndexReady recovers a persisted index when nothing is in memory.
// No registered document means there is nothing to recover; a registered
// document with missing artifacts is a corrupted installation.
func (o *Orchestrator) ensureIndexReady() error {
	if o.idx.IsLoaded() {
		return nil
	}

	last, err := o.registry.LastIngested()
	if err != nil {
		return err
	}
	dir := config.IndexDir(o.dataDir)

	if last == "" {
		if index.Exists(dir) {
			return fmt.Errorf("index artifacts exist but no document is registered: %w",
				domain.ErrInconsistentState)
		}
		return fmt.Errorf("no document has been uploaded: %w", domain.ErrNoIndexAvailable)
	}

	if !index.Exists(dir) {
		return fmt.Errorf("document %s is registered but its index artifacts are missing: %w",
			filepath.Base(last), domain.ErrInconsistentState)
	}
	return o.idx.Load(dir)
}

func (o *Orchestrator) answer(ctx context.Context, question, sessionID string) (domain.Answer, error) {
	retrieved, err := o.idx.Query(question, o.cfg.Index.TopK)
	if err != nil {
		if errors.Is(err, domain.ErrNotBuilt) {
			return domain.Answer{}, fmt.Errorf("index became unavailable: %w", domain.ErrNoIndexAvailable)
		}
		return domain.Answer{}, err
	}

	prompt := o.buildPrompt(question, retrieved, sessionID)

	genCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout())
	defer cancel()

	text, err := o.generator.Generate(genCtx, prompt)
	if err != nil {
		o.log.Error("generation failed",
			zap.String("provider", o.generator.ProviderName()),
			zap.Error(err))
		return domain.Answer{}, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	contexts := make([]string, len(retrieved))
	for i, r := range retrieved {
		contexts[i] = r.Content
	}

	source, err := o.registry.LastIngested()
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{
		Answer:       text,
		Source:       filepath.Base(source),
		QualityScore: quality.Score(text, contexts),
	}, nil
}

// buildPrompt lays out the retrieved context, optional conversation
// summary, and the question. Chain-of-thought steps and example prompts
// come straight from configuration.
func (o *Orchestrator) buildPrompt(question string, retrieved []domain.RetrievedChunk, sessionID string) string {
	var b strings.Builder

	b.WriteString("Answer the question using only the context below.\n\n")
	b.WriteString("Context:\n")
	for _, r := range retrieved {
		if r.Kind == domain.KindTable && len(r.Columns) > 0 {
			fmt.Fprintf(&b, "[table: %s]\n", strings.Join(r.Columns, ", "))
		} else if r.Header != "" {
			fmt.Fprintf(&b, "[%s]\n", r.Header)
		}
		b.WriteString(r.Content)
		b.WriteString("\n\n")
	}

	if sessionID != "" {
		if summary := o.sessions.Summary(sessionID); summary != "" {
			b.WriteString("Conversation so far:\n")
			b.WriteString(summary)
			b.WriteString("\n\n")
		}
	}

	if len(o.cfg.LLM.ExamplePrompts) > 0 {
		b.WriteString("Examples of good questions:\n")
		for _, ex := range o.cfg.LLM.ExamplePrompts {
			b.WriteString("- ")
			b.WriteString(ex)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if o.cfg.LLM.ChainOfThought {
		steps := o.cfg.LLM.ChainOfThoughtSteps
		if len(steps) == 0 {
			steps = []string{
				"Identify what the question is asking for.",
				"Find the relevant passages in the context.",
				"Compose a direct answer from those passages.",
			}
		}
		b.WriteString("Work through these steps before answering:\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
