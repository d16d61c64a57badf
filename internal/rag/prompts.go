package rag

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are the Physical AI & Humanoid Robotics Textbook Assistant. Your role is to help readers understand concepts from this textbook ONLY.

STRICT RULES:
1. ONLY answer questions that can be answered using the provided context from the textbook.
2. If the question is NOT about the textbook content (Physical AI, humanoid robotics, ROS2, simulation, control systems, VLA), politely decline and explain you can only help with textbook content.
3. ALWAYS cite your sources using the chapter and section information provided.
4. If you cannot find relevant information in the context, say so honestly.
5. Keep responses concise but informative.
6. When explaining technical concepts, use clear language appropriate for students.

CONTEXT FROM TEXTBOOK:
{context}

CONVERSATION HISTORY:
{history}

USER QUESTION: {query}

If the user has selected specific text, focus your explanation on that text:
SELECTED TEXT: {selected_text}

Provide a helpful, accurate response based ONLY on the textbook content above. Include citations in the format [Chapter X: Section Name].`

const offTopicResponse = `I can only answer questions about the Physical AI & Humanoid Robotics textbook content. This includes topics like:

- Embodied intelligence and Physical AI fundamentals
- Humanoid kinematics and dynamics
- ROS2 architecture and development
- Simulation environments (Gazebo, Isaac Sim)
- Bipedal locomotion and control
- Vision-Language-Action (VLA) systems

Please ask a question related to these topics, or select text from the textbook for me to explain.`

const noResultsResponse = `I couldn't find specific information about that in the textbook. Here are some suggestions:

1. Try rephrasing your question with different keywords
2. Check the Glossary for term definitions
3. Browse the relevant chapter directly

Would you like me to help you find a specific topic?`

const busyResponse = "The assistant is busy. Please try again in a few seconds."

// onTopicKeywords mark a query as plausibly about the textbook. A query
// containing none of them is treated as off-topic without any model call.
var onTopicKeywords = []string{
	"robot", "humanoid", "ros", "ros2", "simulation", "gazebo",
	"isaac", "control", "locomotion", "kinematic", "dynamic",
	"bipedal", "walking", "manipulation", "grasp", "vla",
	"vision", "language", "action", "ai", "physical",
	"sensor", "actuator", "joint", "motor", "servo",
	"chapter", "textbook", "explain", "what is", "how does",
}

// offTopicPhrases in a generated response indicate the model declined to
// answer from the textbook.
var offTopicPhrases = []string{
	"i can only answer",
	"outside the scope",
	"not covered in the textbook",
	"cannot help with",
}

// isLikelyOffTopic reports whether a query contains none of the on-topic
// keywords. Substring matching keeps this cheap at the cost of false
// negatives ("aid" contains "ai").
func isLikelyOffTopic(query string) bool {
	queryLower := strings.ToLower(query)
	for _, keyword := range onTopicKeywords {
		if strings.Contains(queryLower, keyword) {
			return false
		}
	}
	return true
}

// detectRefusal reports whether a generated response reads as a refusal to
// answer from the textbook.
func detectRefusal(responseText string) bool {
	lower := strings.ToLower(responseText)
	for _, phrase := range offTopicPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// formatContextBlocks renders retrieved chunks as numbered context blocks
// for the system prompt.
func formatContextBlocks(chunks []retrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		section := chunk.Section
		if section == "" {
			section = "N/A"
		}
		url := chunk.URL
		if url == "" {
			url = "N/A"
		}
		parts[i] = fmt.Sprintf("[%d] Chapter: %s, Section: %s\nURL: %s\nContent: %s\n",
			i+1, chunk.Chapter, section, url, chunk.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// formatHistory renders the last messages of the conversation as plain
// "User:"/"Assistant:" lines. At most the five most recent turns are kept.
func formatHistory(history []Message) string {
	if len(history) == 0 {
		return "No previous conversation"
	}
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	lines := make([]string, len(history))
	for i, msg := range history {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		lines[i] = role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

// buildSystemPrompt fills the system prompt template with retrieved context,
// history, and the user's query and selection.
func buildSystemPrompt(chunks []retrievedChunk, history []Message, query, selectedText string) string {
	selected := selectedText
	if selected == "" {
		selected = "None"
	}

	prompt := systemPromptTemplate
	prompt = strings.Replace(prompt, "{context}", formatContextBlocks(chunks), 1)
	prompt = strings.Replace(prompt, "{history}", formatHistory(history), 1)
	prompt = strings.Replace(prompt, "{query}", query, 1)
	prompt = strings.Replace(prompt, "{selected_text}", selected, 1)
	return prompt
}
