package rag

import (
	"strings"
	"testing"
)

func TestIsLikelyOffTopic(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "robotics keyword", query: "How do humanoid robots balance?", want: false},
		{name: "question phrase", query: "what is inverse dynamics", want: false},
		{name: "uppercase keyword", query: "Explain ROS2 topics", want: false},
		{name: "cooking question", query: "Best recipe for lasagna?", want: true},
		{name: "empty query", query: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLikelyOffTopic(tt.query); got != tt.want {
				t.Errorf("isLikelyOffTopic(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDetectRefusal(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{name: "refusal phrase", response: "I can only answer questions about the textbook.", want: true},
		{name: "scope phrase", response: "That topic is outside the scope of this material.", want: true},
		{name: "normal answer", response: "A humanoid robot balances using its zero moment point.", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectRefusal(tt.response); got != tt.want {
				t.Errorf("detectRefusal(%q) = %v, want %v", tt.response, got, tt.want)
			}
		})
	}
}

func TestFormatContextBlocks(t *testing.T) {
	chunks := []retrievedChunk{
		{Chapter: "Chapter 01: Intro", Section: "Embodiment", URL: "https://t.example.com/ch01", Content: "Robots act in the world."},
		{Chapter: "Chapter 02: Kinematics", Content: "Forward kinematics maps joints to pose."},
	}

	got := formatContextBlocks(chunks)

	if !strings.Contains(got, "[1] Chapter: Chapter 01: Intro, Section: Embodiment") {
		t.Errorf("missing first block header in %q", got)
	}
	if !strings.Contains(got, "[2] Chapter: Chapter 02: Kinematics, Section: N/A") {
		t.Errorf("missing N/A fallback for empty section in %q", got)
	}
	if !strings.Contains(got, "\n---\n") {
		t.Error("blocks are not separated by ---")
	}
}

func TestFormatHistory(t *testing.T) {
	if got := formatHistory(nil); got != "No previous conversation" {
		t.Errorf("formatHistory(nil) = %q", got)
	}

	history := []Message{
		{Role: "user", Content: "m1"},
		{Role: "assistant", Content: "m2"},
		{Role: "user", Content: "m3"},
		{Role: "assistant", Content: "m4"},
		{Role: "user", Content: "m5"},
		{Role: "assistant", Content: "m6"},
		{Role: "user", Content: "m7"},
	}

	got := formatHistory(history)

	if strings.Contains(got, "m1") || strings.Contains(got, "m2") {
		t.Errorf("formatHistory() kept more than five messages: %q", got)
	}
	if !strings.Contains(got, "User: m3") || !strings.Contains(got, "Assistant: m6") {
		t.Errorf("formatHistory() missing recent messages: %q", got)
	}
	if !strings.HasSuffix(got, "User: m7") {
		t.Errorf("formatHistory() does not end with latest message: %q", got)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	chunks := []retrievedChunk{
		{Chapter: "Chapter 03: Control", Section: "PID", Content: "Proportional gain scales error."},
	}

	prompt := buildSystemPrompt(chunks, nil, "How does PID work?", "")

	if !strings.Contains(prompt, "Proportional gain scales error.") {
		t.Error("prompt missing context content")
	}
	if !strings.Contains(prompt, "USER QUESTION: How does PID work?") {
		t.Error("prompt missing user question")
	}
	if !strings.Contains(prompt, "SELECTED TEXT: None") {
		t.Error("prompt missing selected text placeholder")
	}
	if !strings.Contains(prompt, "No previous conversation") {
		t.Error("prompt missing history placeholder")
	}
	if strings.Contains(prompt, "{context}") || strings.Contains(prompt, "{query}") {
		t.Error("prompt contains unfilled placeholders")
	}
}
