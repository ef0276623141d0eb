package tui

import (
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
)

// Data loading messages.
type collectionLoadedMsg struct {
	err error
	tab tab
}

type creditLoadedMsg struct {
	err      error
	progress credit.Progress
}

// Session messages.
type loginResultMsg struct {
	err     error
	session session.Session
}

type loggedOutMsg struct{}

// Mutation messages.
type quantityChangedMsg struct {
	err     error
	product model.Product
	delta   int
}

// Toasts.
type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toastMsg struct {
	text string
	kind toastKind
}

type toastExpiredMsg struct {
	id int
}
