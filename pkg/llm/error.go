package llm

// ErrorResponse represents an error returned by the chat API.
type ErrorResponse struct {
	Error string `json:"error"`
}
