package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
)

// DefaultWorkflowPause is how long the simulated deep-analysis step waits.
const DefaultWorkflowPause = time.Second

// Request is one advisor turn.
type Request struct {
	FinancialContext string          `json:"financialContext"`
	SurveyContext    string          `json:"surveyContext"`
	Messages         []model.Message `json:"messages"`
}

// LastUserText returns the content of the final message, or "" when empty.
func (r Request) LastUserText() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// Advisor routes questions to a model tier and streams the answer back.
type Advisor struct {
	client llm.Client
	router *Router
	logger *slog.Logger
	pause  time.Duration
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithPause overrides the simulated deep-analysis pause.
func WithPause(d time.Duration) Option {
	return func(a *Advisor) {
		a.pause = d
	}
}

// WithLogger sets the logger used by the advisor.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Advisor) {
		a.logger = logger
	}
}

// New creates an advisor over the given client and router.
func New(client llm.Client, router *Router, opts ...Option) *Advisor {
	a := &Advisor{
		client: client,
		router: router,
		pause:  DefaultWorkflowPause,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "advisor")
	return a
}

// Respond streams the answer to req. The channel yields chunks in order,
// ends with exactly one ChunkDone and is then closed. If ctx is canceled the
// producer stops, releases the provider stream and closes the channel
// without a ChunkDone.
func (a *Advisor) Respond(ctx context.Context, req Request) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		e := &emitter{ctx: ctx, out: out}
		text := req.LastUserText()

		var err error
		if IsWorkflowQuery(text) {
			err = a.runWorkflow(ctx, e, req)
		} else {
			err = a.runRouted(ctx, e, req, text)
		}

		if ctx.Err() != nil {
			a.logger.Debug("response abandoned", "error", ctx.Err())
			return
		}
		if err != nil {
			a.logger.Error("response failed", "error", err)
			if !e.send(errorChunk("Error: " + causeMessage(err))) {
				return
			}
		}
		e.send(Chunk{Kind: ChunkDone})
	}()

	return out
}

func (a *Advisor) runRouted(ctx context.Context, e *emitter, req Request, text string) error {
	modelID := a.router.Route(text)
	a.logger.Info("routing query", "model", modelID)

	if !e.send(labelChunk(modelLabel(a.router.Label(modelID)))) {
		return ctx.Err()
	}

	return a.streamWithPrompt(ctx, e, modelID, req.Messages, req.FinancialContext, req.SurveyContext)
}

// runWorkflow executes the three-step analyze-and-plan sequence.
func (a *Advisor) runWorkflow(ctx context.Context, e *emitter, req Request) error {
	tiers := a.router.Tiers()
	a.logger.Info("starting deep analysis workflow", "messages", len(req.Messages))

	if !e.send(labelChunk(workflowStartLabel)) || !e.send(labelChunk(stepOneLabel)) {
		return ctx.Err()
	}

	stepOne := make([]model.Message, 0, len(req.Messages)+1)
	stepOne = append(stepOne, model.SystemMessage(categorizePrompt))
	stepOne = append(stepOne, req.Messages...)

	summary, err := a.client.Complete(ctx, tiers.Fast, stepOne)
	if err != nil {
		return err
	}
	if !e.send(contentChunk(summary + "\n\n")) {
		return ctx.Err()
	}

	if !e.send(labelChunk(stepTwoLabel)) {
		return ctx.Err()
	}
	if err := sleep(ctx, a.pause); err != nil {
		return err
	}
	if !e.send(contentChunk(stepTwoResult)) {
		return ctx.Err()
	}

	if !e.send(labelChunk(stepThreeLabel)) {
		return ctx.Err()
	}
	plan := []model.Message{model.UserMessage(planPrompt(summary))}
	return a.streamWithPrompt(ctx, e, tiers.Complex, plan, "", "")
}

// streamWithPrompt prepends the system prompt and forwards every non-empty
// fragment as a content chunk.
func (a *Advisor) streamWithPrompt(ctx context.Context, e *emitter, modelID model.ModelID, messages []model.Message, financialContext, surveyContext string) error {
	full := make([]model.Message, 0, len(messages)+1)
	full = append(full, model.SystemMessage(SystemPrompt(financialContext, surveyContext)))
	full = append(full, messages...)

	stream, err := a.client.Stream(ctx, modelID, full)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			a.logger.Debug("failed to close stream", "model", modelID, "error", closeErr)
		}
	}()

	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if fragment == "" {
			continue
		}
		if !e.send(contentChunk(fragment)) {
			return ctx.Err()
		}
	}
}

// emitter delivers chunks until the consumer's context ends.
type emitter struct {
	ctx context.Context
	out chan<- Chunk
}

func (e *emitter) send(c Chunk) bool {
	select {
	case e.out <- c:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// causeMessage strips the model prefix from provider errors.
func causeMessage(err error) string {
	var perr *llm.ProviderError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err.Error()
	}
	return err.Error()
}

// Collect drains a response channel into its concatenated text, returning
// the first error chunk as an error.
func Collect(chunks <-chan Chunk) (string, error) {
	var text []byte
	var failure error
	for c := range chunks {
		switch c.Kind {
		case ChunkLabel, ChunkContent:
			text = append(text, c.Text...)
		case ChunkError:
			if failure == nil {
				failure = errors.New(c.Text)
			}
		case ChunkDone:
		}
	}
	return string(text), failure
}
