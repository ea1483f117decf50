package domain

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is the provider-agnostic chat message shape used by the prompt
// builder and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single chat-completion call. It is built per user
// message and never reused.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	// MaxTokens of zero leaves the limit to the provider.
	MaxTokens int
	// User identifies the end user to the provider and to tracing.
	User      string
	RequestID string
}

// Usage reports token accounting returned by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the generated text of a successful call.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}
