package llm

import "context"

// Generator is a text-in, JSON-out model call. Implementations must honor
// ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// contactDoc is the wire shape we ask the model for.
type contactDoc struct {
	Name       string  `json:"name,omitempty"`
	Company    string  `json:"company,omitempty"`
	Title      string  `json:"title,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Website    string  `json:"website,omitempty"`
	Address    string  `json:"address,omitempty"`
	Confidence float32 `json:"confidence,omitempty"` // optional (0..1)
}
