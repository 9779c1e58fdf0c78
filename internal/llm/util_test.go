package llm

import (
	"testing"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"score\": 7}\n```",
			expected: `{"score": 7}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"score\": 7}\n```",
			expected: `{"score": 7}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"score\": 7}\n```",
			expected: `{"score": 7}`,
		},
		{
			name:     "plain JSON",
			input:    `{"score": 7}`,
			expected: `{"score": 7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the evaluation:\n{\"score\": 8}",
			expected: `{"score": 8}`,
		},
		{
			name:     "conversational preamble",
			input:    "Based on the answer provided, I've scored the response. Here's the structured output:\n\n{\"score\": 6, \"brief_feedback\": \"solid\"}",
			expected: `{"score": 6, "brief_feedback": "solid"}`,
		},
		{
			name:     "preamble with multiple sentences",
			input:    "I reviewed the transcript. The candidate covered rollback. Here is the result: {\"score\": 9}",
			expected: `{"score": 9}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the questions:\n[\"q1\", \"q2\"]",
			expected: `["q1", "q2"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"score\": 5}\n\nLet me know if you need anything else!",
			expected: `{"score": 5}`,
		},
		{
			name:     "nested objects",
			input:    "Output:\n{\"summary\": {\"overall_score\": 7}}",
			expected: `{"summary": {"overall_score": 7}}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"brief_feedback\": \"Candidate said \\\"rollback\\\"\"}",
			expected: `{"brief_feedback": "Candidate said \"rollback\""}`,
		},
		{
			name:     "deeply nested",
			input:    "Here: {\"a\": {\"b\": {\"c\": {\"d\": \"deep\"}}}}",
			expected: `{"a": {"b": {"c": {"d": "deep"}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple object",
			input:    `{"score": 7}`,
			expected: `{"score": 7}`,
		},
		{
			name:     "nested objects",
			input:    `{"question": {"difficulty": "HARD"}}`,
			expected: `{"question": {"difficulty": "HARD"}}`,
		},
		{
			name:     "object with array",
			input:    `{"expected_key_points": ["caching", "indexing"]}`,
			expected: `{"expected_key_points": ["caching", "indexing"]}`,
		},
		{
			name:     "object with trailing text",
			input:    `{"score": 7} and some more text`,
			expected: `{"score": 7}`,
		},
		{
			name:     "string with braces inside",
			input:    `{"template": "Explain {concept} briefly"}`,
			expected: `{"template": "Explain {concept} briefly"}`,
		},
		{
			name:     "unterminated object",
			input:    `{"score": 7`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "no object at all",
			input:    "not json",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple array",
			input:    `["EASY", "MEDIUM", "HARD"]`,
			expected: `["EASY", "MEDIUM", "HARD"]`,
		},
		{
			name:     "nested arrays",
			input:    `[[1, 2], [3, 4]]`,
			expected: `[[1, 2], [3, 4]]`,
		},
		{
			name:     "array of objects",
			input:    `[{"score": 7}, {"score": 9}]`,
			expected: `[{"score": 7}, {"score": 9}]`,
		},
		{
			name:     "array with trailing text",
			input:    `[1, 2, 3] extra stuff`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "unterminated array",
			input:    `[1, 2`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "no array at all",
			input:    "not an array",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONArray(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONArray() = %q, want %q", result, tt.expected)
			}
		})
	}
}
