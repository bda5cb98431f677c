package service

import (
	"fmt"
	"strings"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// Prompt templates consumed by the pipeline stages:
//
//	Router     → routerPrompt
//	Retriever  → (metadata filter only, no prompt)
//	Validator  → validatorPrompt
//	Responder  → responderPrompt
//	Fallback / greeting / farewell helpers below.

const (
	profileName     = "Vivek Joseph Carvalho"
	profileTitle    = "Senior AI/ML Specialist"
	profileEmail    = "vivek_carvalho@yahoo.co.in"
	profileLinkedIn = "https://www.linkedin.com/in/vivekcarvalho/"
	profileGitHub   = "https://github.com/vivekcarvalho"
)

func topicList() string {
	var b strings.Builder
	for _, t := range types.CanonicalTopics {
		fmt.Fprintf(&b, "  - %s\n", t)
	}
	return b.String()
}

func routerPrompt(query string) string {
	return fmt.Sprintf(`You are a query-routing agent for an AI-powered professional profile.

Your single job is to map the user's question to the MOST relevant topic from
the list below.  Output ONLY the topic name — nothing else.

Available topics:
%s  - off_topic

Rules:
• Pick the single best-matching topic.
• If the query touches multiple topics, choose the PRIMARY one.
• If the query is irrelevant to the profile (politics, religion, jokes,
  general knowledge, etc.), output exactly:  off_topic
• Questions like "tell me about yourself" or "give me an overview" map to:  Introduction
• Questions about why the candidate is a good fit map to:  Role Suitability

User query: %s

Topic:`, topicList(), query)
}

func validatorPrompt(query, context string) string {
	return fmt.Sprintf(`You are a context-validation agent.

Given a user query and a set of retrieved context chunks, decide whether the
chunks contain enough information to answer the query accurately.

User query:
%s

Retrieved context:
%s

Output exactly ONE word:
  PASS   – the context contains the needed information.
  FAIL   – the context does NOT contain the needed information.

Decision:`, query, context)
}

func responderPrompt(context, chatHistory, question string) string {
	return fmt.Sprintf(`You are a warm, professional AI assistant representing %s,
a %s.

Use ONLY the context below to answer the question.  Never fabricate information
that is not present in the context.

Context:
%s

Conversation history (for continuity):
%s

Question:
%s

Guidelines:
• Speak naturally — as if you are a knowledgeable colleague introducing Vivek.
• Cite specific numbers, dates, companies, or project names when available.
• If dates are available, always present information in the reverse chronological order.
• If a detail is not in the context, say so honestly rather than guessing.
• End with a gentle invitation to ask a follow-up question.
• Keep the tone professional yet warm.

Answer:`, profileName, profileTitle, context, chatHistory, question)
}

func offTopicPrompt(query string) string {
	return fmt.Sprintf(`The user asked: "%s"

This is outside the scope of a professional profile conversation.
Reply politely, explain that you focus on Vivek's career and expertise, and
suggest a few topics they could explore instead:
  • AI/ML projects and agentic-AI expertise
  • Data Science & Analytics experience
  • Technical skills and certifications
  • Education and career achievements

Keep the tone courteous — never dismissive.`, query)
}

func insufficientContextPrompt(query string) string {
	return fmt.Sprintf(`The user asked: "%s"

The retrieved information does not cover this question well enough.
Reply honestly, acknowledge that the specific detail isn't available right now,
and suggest related topics the user might find interesting.
End by inviting them to try another question.`, query)
}

const greetingPrompt = `Generate a warm, professional greeting for someone visiting Vivek Joseph Carvalho's
AI-powered profile.

The greeting should:
1. Welcome the visitor
2. Briefly introduce Vivek (Senior AI/ML Specialist, 15+ years experience)
3. Invite them to ask anything about experience, projects, skills, or background
4. Be friendly and professional

Keep it to 2-3 sentences.`

const farewellPrompt = `Generate a professional farewell for someone ending their chat about
Vivek Joseph Carvalho's profile.

Include:
1. A thank-you for their interest
2. Contact pointers so they can reach out directly:
   Email: ` + profileEmail + `
   LinkedIn: ` + profileLinkedIn + `
   GitHub: ` + profileGitHub + `
3. Warmth and enthusiasm about potential opportunities

Keep it concise and encouraging.`

// Static replies used when the generation capability itself fails; the
// conversation must always produce some reply.
const (
	fallbackGreeting = "Hello! I'm the AI voice of " + profileName + ", a " + profileTitle + ". " +
		"Ask me about experience, projects, skills, or background — I'm happy to help!"

	fallbackFarewell = "Thank you for your interest in " + profileName + "'s profile!\n\n" +
		"Email: " + profileEmail + "\n" +
		"LinkedIn: " + profileLinkedIn + "\n\n" +
		"Looking forward to connecting!"

	apologyReply = "I hit a small snag processing that — could you try rephrasing? " +
		"I'm happy to help with anything about the profile."
)
