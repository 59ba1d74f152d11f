// Package models contains data types and constants shared by the chat widget client.
package models

// Default endpoints and markup hooks of the chat panel
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultPanelPath = "/chat/"
	DefaultRootID    = "chat"
)

// Fixed texts the widget writes into the conversation
const (
	PlaceholderText = "Thinking..."
	FailureText     = "Error: Unable to process your request"
)

// DefaultHeaders returns the default headers for panel and form requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,text/event-stream;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Sec-Fetch-Site":  "same-origin",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Dest":  "empty",
	}
}

// FormHeaders returns the headers for form-encoded POST requests
func FormHeaders() map[string]string {
	return map[string]string{
		"Content-Type":     "application/x-www-form-urlencoded;charset=utf-8",
		"X-Requested-With": "XMLHttpRequest",
	}
}
