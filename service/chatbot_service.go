package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// Retriever is the retrieval capability the orchestrator depends on.
type Retriever interface {
	RetrieveFormatted(ctx context.Context, query, topic string) (string, error)
}

const (
	validationPass = "PASS"
	validationFail = "FAIL"
)

// Small-talk vocabularies checked before the pipeline runs; matching
// queries never burn a retrieval round-trip.
var greetingPhrases = map[string]bool{
	"hello":          true,
	"hi":             true,
	"hey":            true,
	"greetings":      true,
	"good morning":   true,
	"good afternoon": true,
}

var farewellWords = []string{"bye", "goodbye", "thank you", "thanks", "see you", "stop", "exit"}

// pipelineState is the record threaded through one pipeline invocation.
type pipelineState struct {
	query       string
	topic       string
	context     string
	validation  string
	response    string
	chatHistory string
}

// stateID enumerates the orchestrator's states. Terminal states always
// leave a response in the state record; there are no cycles.
type stateID int

const (
	stateRouter stateID = iota
	stateRetriever
	stateValidator
	stateResponder
	stateOffTopic
	stateInsufficient
	stateDone
)

// routeAfterRouter is the first decision point.
func routeAfterRouter(st pipelineState) stateID {
	if st.topic == types.TopicOffTopic {
		return stateOffTopic
	}
	return stateRetriever
}

// routeAfterValidator is the second decision point.
func routeAfterValidator(st pipelineState) stateID {
	if st.validation == validationPass {
		return stateResponder
	}
	return stateInsufficient
}

// ProfileChatbot runs the router→retriever→validator→responder state
// machine for a single conversation. One instance per session; instances
// share only the read-only retriever and chat model.
type ProfileChatbot struct {
	llm     ChatModel
	rag     Retriever
	history *conversationHistory
	mu      sync.Mutex
}

func NewProfileChatbot(llm ChatModel, rag Retriever, maxHistory int) *ProfileChatbot {
	return &ProfileChatbot{
		llm:     llm,
		rag:     rag,
		history: newConversationHistory(maxHistory),
	}
}

// Chat processes one user turn and always returns a reply string: every
// failure mode is absorbed into a polite message, never an error.
func (b *ProfileChatbot) Chat(ctx context.Context, query string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(query))

	if greetingPhrases[lower] {
		reply := b.generateGreeting(ctx)
		b.recordTurn(query, reply)
		return reply
	}
	if containsAny(lower, farewellWords) {
		reply := b.generateFarewell(ctx)
		b.recordTurn(query, reply)
		return reply
	}

	st := pipelineState{
		query:       query,
		chatHistory: b.history.format(),
	}

	final, err := b.runPipeline(ctx, st)
	reply := final.response
	if err != nil {
		log.Printf("pipeline error: %v", err)
		reply = apologyReply
	}

	b.recordTurn(query, reply)
	return reply
}

// runPipeline drives the state machine from ROUTER to a terminal state.
func (b *ProfileChatbot) runPipeline(ctx context.Context, st pipelineState) (pipelineState, error) {
	current := stateRouter
	for current != stateDone {
		var err error
		switch current {
		case stateRouter:
			st = b.routerNode(ctx, st)
			current = routeAfterRouter(st)
		case stateRetriever:
			st, err = b.retrieverNode(ctx, st)
			current = stateValidator
		case stateValidator:
			st = b.validatorNode(ctx, st)
			current = routeAfterValidator(st)
		case stateResponder:
			st, err = b.responderNode(ctx, st)
			current = stateDone
		case stateOffTopic:
			st, err = b.offTopicNode(ctx, st)
			current = stateDone
		case stateInsufficient:
			st, err = b.insufficientNode(ctx, st)
			current = stateDone
		}
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

// routerNode classifies the query into one canonical topic or off_topic.
// A failed classification call is recovered locally: the fail-safe
// default for malformed output covers a missing one too.
func (b *ProfileChatbot) routerNode(ctx context.Context, st pipelineState) pipelineState {
	raw, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: routerPrompt(st.query)},
	})
	if err != nil {
		log.Printf("router classification failed, defaulting to off_topic: %v", err)
		st.topic = types.TopicOffTopic
		return st
	}
	st.topic = types.NormalizeTopic(raw)
	return st
}

// retrieverNode fetches chunks filtered by the routed topic.
func (b *ProfileChatbot) retrieverNode(ctx context.Context, st pipelineState) (pipelineState, error) {
	context, err := b.rag.RetrieveFormatted(ctx, st.query, st.topic)
	if err != nil {
		return st, err
	}
	st.context = context
	return st, nil
}

// validatorNode decides whether the retrieved context suffices. The parse
// is permissive (substring PASS in verbose output counts) but the effect
// is strict: anything else, including a failed call, routes to the
// insufficient-context fallback.
func (b *ProfileChatbot) validatorNode(ctx context.Context, st pipelineState) pipelineState {
	raw, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: validatorPrompt(st.query, st.context)},
	})
	if err != nil {
		log.Printf("validator call failed, treating as FAIL: %v", err)
		st.validation = validationFail
		return st
	}
	if strings.Contains(strings.ToUpper(raw), validationPass) {
		st.validation = validationPass
	} else {
		st.validation = validationFail
	}
	return st
}

func (b *ProfileChatbot) responderNode(ctx context.Context, st pipelineState) (pipelineState, error) {
	answer, err := b.llm.Generate(ctx, "You are a professional AI assistant.", []types.Message{
		{Role: types.RoleUser, Content: responderPrompt(st.context, st.chatHistory, st.query)},
	})
	if err != nil {
		return st, err
	}
	st.response = strings.TrimSpace(answer)
	return st, nil
}

func (b *ProfileChatbot) offTopicNode(ctx context.Context, st pipelineState) (pipelineState, error) {
	answer, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: offTopicPrompt(st.query)},
	})
	if err != nil {
		return st, err
	}
	st.response = strings.TrimSpace(answer)
	return st, nil
}

func (b *ProfileChatbot) insufficientNode(ctx context.Context, st pipelineState) (pipelineState, error) {
	answer, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: insufficientContextPrompt(st.query)},
	})
	if err != nil {
		return st, err
	}
	st.response = strings.TrimSpace(answer)
	return st, nil
}

// GetGreeting generates a session-opening greeting and records it as an
// assistant turn.
func (b *ProfileChatbot) GetGreeting(ctx context.Context) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply := b.generateGreeting(ctx)
	b.history.push(types.RoleAssistant, reply)
	return reply
}

// GetFarewell generates a closing message and records it as an assistant
// turn.
func (b *ProfileChatbot) GetFarewell(ctx context.Context) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply := b.generateFarewell(ctx)
	b.history.push(types.RoleAssistant, reply)
	return reply
}

func (b *ProfileChatbot) generateGreeting(ctx context.Context) string {
	reply, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: greetingPrompt},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		return fallbackGreeting
	}
	return strings.TrimSpace(reply)
}

func (b *ProfileChatbot) generateFarewell(ctx context.Context) string {
	reply, err := b.llm.Generate(ctx, "", []types.Message{
		{Role: types.RoleUser, Content: farewellPrompt},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		return fallbackFarewell
	}
	return strings.TrimSpace(reply)
}

func (b *ProfileChatbot) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.clear()
}

func (b *ProfileChatbot) GetHistory() []types.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.snapshot()
}

func (b *ProfileChatbot) recordTurn(query, reply string) {
	b.history.push(types.RoleUser, query)
	b.history.push(types.RoleAssistant, reply)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
