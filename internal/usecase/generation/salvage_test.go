package generation

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"wrapped in prose", `Sure! Here you go: {"a":1} hope that helps`, `{"a":1}`, true},
		{"nested braces", `text {"a":{"b":2}} text`, `{"a":{"b":2}}`, true},
		{"no braces", "no json here", "", false},
		{"only opening", "start { and nothing", "", false},
		{"reversed braces", "} backwards {", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSalvagedQuiz(t *testing.T) {
	raw := `Of course! {"questions":[{"question":"q1","options":{"A":"1","B":"2","C":"3","D":"4"},"answer":"A"}]} Done.`

	payload, err := parseSalvagedQuiz(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Questions) != 1 || payload.Questions[0].Answer != "A" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestParseSalvagedQuiz_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no json", "I cannot help with that."},
		{"broken json", `{"questions": [}`},
		{"wrong shape", `{"questions": "not a list"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSalvagedQuiz(tt.in); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
