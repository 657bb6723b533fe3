package llm

// Message represents a single message in a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// UserMessage is a shorthand for a single user-role message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
