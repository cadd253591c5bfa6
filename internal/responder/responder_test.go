package responder

import "testing"

func fixture() *Responder {
	return New([]Rule{
		{Any: []string{"compress"}, Answer: "compress-answer"},
		{Any: []string{"Retrieval", "different"}, Answer: "retrieval-answer"},
		{Any: []string{"ratio"}, Answer: "ratio-answer"},
	}, "fallback-answer")
}

func TestAnswer(t *testing.T) {
	r := fixture()
	tests := []struct {
		query string
		want  string
	}{
		{"What does CLaRa compress?", "compress-answer"},
		{"What is the compression ratio?", "compress-answer"},
		{"What ratio is used?", "ratio-answer"},
		{"How is RETRIEVAL handled?", "retrieval-answer"},
		{"Is it different?", "retrieval-answer"},
		{"hello", "fallback-answer"},
		{"", "fallback-answer"},
		{"ratio-based retrieval", "retrieval-answer"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := r.Answer(tt.query); got != tt.want {
				t.Fatalf("Answer(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestAnswerDoesNotTrimPunctuation(t *testing.T) {
	r := New([]Rule{{Any: []string{"ratio?"}, Answer: "exact"}}, "fallback")
	if got := r.Answer("ratio"); got != "fallback" {
		t.Fatalf("punctuation should be significant, got %q", got)
	}
	if got := r.Answer("RATIO?"); got != "exact" {
		t.Fatalf("case should be folded, got %q", got)
	}
}

func TestEmptyKeywordsNeverMatch(t *testing.T) {
	r := New([]Rule{{Any: []string{""}, Answer: "never"}}, "fallback")
	if got := r.Answer("anything"); got != "fallback" {
		t.Fatalf("empty keyword matched: %q", got)
	}
}
