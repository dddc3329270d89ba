package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/legalvoice-orchestrator/server/internal/agent/graph/conversations"
	"github.com/legalvoice-orchestrator/server/internal/agent/graph/nodes"
	"github.com/legalvoice-orchestrator/server/internal/agent/graph/observers"
	"github.com/legalvoice-orchestrator/server/internal/agent/graph/route"
	"github.com/legalvoice-orchestrator/server/internal/agent/llm"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// maxRunSteps bounds a single turn. The longest legal path is
// detect_intent -> greet_general -> mention_services -> synthesizer.
const maxRunSteps = 20

// Config holds everything needed to compose the dialogue graph end-to-end.
// This is a convenience layer over BuildGraph that also constructs the chat
// models and LLM capabilities.
type Config struct {
	APIKey          string
	BaseURL         string
	ClassifierModel model.ClassifierModelConfig
	SynthesisModel  model.SynthesisModelConfig
	Conversation    model.ConversationConfig
	LegalAPI        model.LegalAPIConfig
	Analytics       model.AnalyticsSource
	Directory       model.CallerDirectory
}

// RunState is graph-local bookkeeping for one turn.
type RunState struct {
	ConversationID string
	Trail          []string
}

type runStateKey struct{}

// GraphBuilder handles the construction of the dialogue graph
type GraphBuilder struct {
	nodes *nodes.Nodes
	graph *compose.Graph[*model.TurnState, *model.TurnState]
}

// BuildRunner composes chat models, capabilities and nodes, builds the graph
// and returns a Runner.
func BuildRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Analytics == nil || cfg.Directory == nil {
		return nil, fmt.Errorf("analytics source and caller directory are required")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		ClassifierModel: &cfg.ClassifierModel,
		SynthesisModel:  &cfg.SynthesisModel,
	})
	if err != nil {
		return nil, err
	}

	n, err := nodes.New(nodes.Deps{
		Classifier:       llm.NewClassifier(cms.Classifier),
		Extractor:        llm.NewRangeExtractor(cms.Classifier),
		Synthesizer:      llm.NewSynthesizer(cms.Synthesis),
		Analytics:        cfg.Analytics,
		Directory:        cfg.Directory,
		MessagesManager:  conversations.NewMessagesManager(cfg.Conversation),
		ActiveCasesLimit: cfg.LegalAPI.ActiveCasesLimit,
	})
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, n)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Dialogue graph built successfully")
	return NewRunner(runnable), nil
}

// BuildGraph constructs and returns the compiled dialogue graph
func BuildGraph(ctx context.Context, n *nodes.Nodes) (compose.Runnable[*model.TurnState, *model.TurnState], error) {
	if n == nil {
		return nil, fmt.Errorf("nodes are nil")
	}

	builder := &GraphBuilder{
		nodes: n,
		graph: compose.NewGraph[*model.TurnState, *model.TurnState](
			compose.WithGenLocalState(func(ctx context.Context) *RunState {
				rs := &RunState{ConversationID: model.ConversationIDFrom(ctx)}
				if holder, ok := ctx.Value(runStateKey{}).(**RunState); ok {
					*holder = rs
				}
				return rs
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds one lambda node per dialogue behavior
func (b *GraphBuilder) addNodes() error {
	behaviors := []struct {
		name string
		fn   func(context.Context, *model.TurnState) (*model.TurnState, error)
	}{
		{route.NodeLookup, b.nodes.Lookup},
		{route.NodeGreetPersonalized, b.nodes.GreetPersonalized},
		{route.NodeGreetGeneral, b.nodes.GreetGeneral},
		{route.NodeMentionServices, b.nodes.MentionServices},
		{route.NodeConfirmIdentity, b.nodes.ConfirmIdentity},
		{route.NodeIdentityFailedEnd, b.nodes.IdentityFailedEnd},
		{route.NodeDetectIntent, b.nodes.DetectIntent},
		{route.NodeThanksEnd, b.nodes.ThanksEnd},
		{route.NodePoliteRejection, b.nodes.PoliteRejection},
		{route.NodeAnalyticsSummary, b.nodes.AnalyticsSummary},
		{route.NodeActiveCases, b.nodes.ActiveCases},
		{route.NodeSynthesizer, b.nodes.Synthesizer},
	}

	for _, bh := range behaviors {
		err := b.graph.AddLambdaNode(bh.name,
			compose.InvokableLambda(bh.fn),
			compose.WithNodeName(bh.name),
			compose.WithStatePreHandler(newTrailPreHandler(bh.name)),
		)
		if err != nil {
			logx.Error().Err(err).Str("node", bh.name).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", bh.name, err)
		}
	}
	return nil
}

// addEdges creates the unconditional connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{route.NodeGreetPersonalized, compose.END},
		{route.NodeGreetGeneral, route.NodeMentionServices},
		{route.NodeIdentityFailedEnd, compose.END},
		{route.NodeAnalyticsSummary, route.NodeSynthesizer},
		{route.NodeActiveCases, route.NodeSynthesizer},
		{route.NodeThanksEnd, route.NodeSynthesizer},
		{route.NodePoliteRejection, route.NodeSynthesizer},
		{route.NodeSynthesizer, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches backed by the pure routers
func (b *GraphBuilder) addBranches() error {
	branches := []struct {
		from    string
		decide  func(*model.TurnState) string
		targets []string
	}{
		{
			from:    compose.START,
			decide:  route.Entry,
			targets: []string{route.NodeLookup, route.NodeConfirmIdentity, route.NodeDetectIntent},
		},
		{
			from:    route.NodeLookup,
			decide:  route.AfterLookup,
			targets: []string{route.NodeGreetPersonalized, route.NodeGreetGeneral},
		},
		{
			from:    route.NodeMentionServices,
			decide:  route.AfterMentionServices,
			targets: []string{route.End, route.NodeDetectIntent, route.NodeSynthesizer},
		},
		{
			from:    route.NodeConfirmIdentity,
			decide:  route.AfterConfirmIdentity,
			targets: []string{route.NodeIdentityFailedEnd, route.End},
		},
		{
			from: route.NodeDetectIntent,
			decide: func(s *model.TurnState) string {
				return route.Intent(s.CurrentIntent, s.LastUserContent())
			},
			targets: []string{
				route.NodeAnalyticsSummary,
				route.NodeActiveCases,
				route.NodeGreetGeneral,
				route.NodeThanksEnd,
				route.NodePoliteRejection,
			},
		},
	}

	for _, br := range branches {
		ends := make(map[string]bool, len(br.targets))
		for _, t := range br.targets {
			ends[graphNode(t)] = true
		}
		branch := compose.NewGraphBranch(newRouteCondition(br.from, br.decide), ends)
		if err := b.graph.AddBranch(br.from, branch); err != nil {
			logx.Error().Err(err).Str("node", br.from).Msg("Error adding branch")
			return fmt.Errorf("error adding branch after %s: %w", br.from, err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.TurnState, *model.TurnState], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("dialogue"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// newRouteCondition adapts a pure router to an Eino branch condition.
func newRouteCondition(from string, decide func(*model.TurnState) string) func(context.Context, *model.TurnState) (string, error) {
	return func(ctx context.Context, s *model.TurnState) (string, error) {
		if s == nil {
			return "", fmt.Errorf("route after %s: nil turn state", from)
		}
		next := decide(s)
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("from", from).
			Str("to", next).
			Msg("Routing")
		return graphNode(next), nil
	}
}

// newTrailPreHandler records every visited node in the run state.
func newTrailPreHandler(name string) func(context.Context, *model.TurnState, *RunState) (*model.TurnState, error) {
	return func(ctx context.Context, in *model.TurnState, rs *RunState) (*model.TurnState, error) {
		rs.Trail = append(rs.Trail, name)
		return in, nil
	}
}

func graphNode(name string) string {
	if name == route.End {
		return compose.END
	}
	return name
}

// Runner advances a conversation by one turn through the compiled graph.
type Runner struct {
	runnable compose.Runnable[*model.TurnState, *model.TurnState]
}

func NewRunner(runnable compose.Runnable[*model.TurnState, *model.TurnState]) *Runner {
	return &Runner{runnable: runnable}
}

// AdvanceTurn runs one turn. prior is never mutated; a nil prior starts a new
// conversation keyed by the conversation id carried in ctx. incoming may be
// nil for a system-initiated turn. On error the caller keeps its prior state.
func (r *Runner) AdvanceTurn(ctx context.Context, prior *model.TurnState, incoming *schema.Message) (*model.TurnState, error) {
	next, _, err := r.advance(ctx, prior, incoming)
	return next, err
}

func (r *Runner) advance(ctx context.Context, prior *model.TurnState, incoming *schema.Message) (*model.TurnState, []string, error) {
	var state *model.TurnState
	if prior == nil {
		state = model.NewTurnState(model.ConversationIDFrom(ctx), "")
	} else {
		cloned, err := prior.Clone()
		if err != nil {
			return nil, nil, err
		}
		state = cloned
	}

	if incoming != nil {
		state.Messages = append(state.Messages, incoming)
	}
	state.Inner.IterationCount++
	state.ResetTurn()

	var rs *RunState
	ctx = model.WithConversationID(ctx, state.ConversationID)
	ctx = context.WithValue(ctx, runStateKey{}, &rs)

	out, err := r.runnable.Invoke(ctx, state, compose.WithCallbacks(observers.NewAllCallbacks()))
	var trail []string
	if rs != nil {
		trail = rs.Trail
	}
	if err != nil {
		logx.Error().Err(err).
			Str("conversation_id", state.ConversationID).
			Strs("trail", trail).
			Msg("Turn failed")
		return nil, trail, fmt.Errorf("advance turn: %w", err)
	}
	if out == nil {
		out = state
	}

	if out.AssistantResponse != "" {
		out.Messages = append(out.Messages, schema.AssistantMessage(out.AssistantResponse, nil))
	}
	logx.Info().
		Str("conversation_id", out.ConversationID).
		Int("iteration", out.Inner.IterationCount).
		Str("intent", string(out.CurrentIntent)).
		Strs("trail", trail).
		Msg("Turn complete")
	return out, trail, nil
}
