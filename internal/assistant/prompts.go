package assistant

import (
	"fmt"
	"strings"

	"github.com/supervisionhq/jarvis/internal/corpus"
)

// managerSystemPrompt drives the classifier. The model must answer with a
// single word naming one of the five agents; ParseCategory handles the rest.
const managerSystemPrompt = `You are the manager of five assistant agents and route each user request to exactly one of them:

- administrative: the user wants to send a text or message to someone.
- technical: the user asks about research papers, machine learning, or other technical material.
- healthcare: the user asks about health, symptoms, illnesses, or medical topics.
- conversational: the user asks about past conversations with a friend or what someone said.
- normal: anything else.

Respond with exactly one word, the name of the chosen agent. Do not explain.`

const normalSystemPrompt = `You are a capable personal assistant. Answer the request directly and concisely.`

const technicalSystemPrompt = `You are a technical assistant. Answer the request using the research paper excerpts provided with it. If the excerpts do not cover the question, say what you can from general knowledge.
Do not cite any papers at the end of your answer. Do not repeat citation markers such as [1] even if they appear inside an excerpt.`

const healthcareSystemPrompt = `You are a health information assistant. Answer the request using the health article excerpts provided with it. You provide information, not diagnoses.
Do not cite any articles at the end of your answer. Do not repeat citation markers such as [1] even if they appear inside an excerpt.`

const conversationalSystemPrompt = `You are a personal assistant with access to excerpts of the user's past conversations. Answer the request using the conversation excerpts provided with it. If the excerpts do not mention the topic, say so plainly.`

// composeTextSystemPrompt writes the body of an outgoing text message.
const composeTextSystemPrompt = `You write short, friendly text messages on behalf of %s. Use the provided context about the recipient when it helps. Start the message with "%s: " and write nothing except the message itself.`

// excerptBlocks renders retrieved excerpts as provenance-tagged blocks:
//
//	<label>: <title>
//	excerpt: <text>
//
// One block per excerpt, in retrieval order.
func excerptBlocks(label string, excerpts []corpus.Excerpt) string {
	var b strings.Builder
	for _, e := range excerpts {
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(e.Metadata["title"])
		b.WriteString("\nexcerpt: ")
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// retrievalPrompt combines the request, optional rolling conversation
// context, and excerpt blocks into one user prompt.
func retrievalPrompt(request, convContext, blocks string) string {
	var b strings.Builder
	if convContext != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(convContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Request: ")
	b.WriteString(request)
	if blocks != "" {
		b.WriteString("\n\n")
		b.WriteString(blocks)
	}
	return b.String()
}

// composeTextPrompt builds the user prompt for drafting an outgoing text.
func composeTextPrompt(request string, recipientName, recentSummary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the text message described by this request: %s\n", request)
	fmt.Fprintf(&b, "Recipient: %s\n", recipientName)
	if recentSummary != "" {
		fmt.Fprintf(&b, "Context from the most recent conversation with them: %s\n", recentSummary)
	}
	return b.String()
}
