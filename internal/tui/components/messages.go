// Package components holds the reusable bubbletea models of the console.
package components

// QuerySettledMsg carries a search query that stayed unchanged for the debounce window.
type QuerySettledMsg struct {
	ListID string
	Query  string
}

// LoginSubmitMsg is sent when the login form is submitted.
type LoginSubmitMsg struct {
	Email    string
	Password string
}
