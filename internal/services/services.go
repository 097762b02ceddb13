// Package services holds the application operations behind the HTTP API,
// the worker and ledgerctl. Every operation is scoped to a session email
// and, below the client list, a client id.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"monotributo/internal/amqp"
	"monotributo/internal/core"
	"monotributo/internal/storage"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrNoSession       = errors.New("missing session email")
)

// Publisher announces collection changes. *amqp.Client implements it.
type Publisher interface {
	PublishInvoicesImported(ctx context.Context, msg *amqp.InvoicesImportedMessage) error
}

var _ Publisher = (*amqp.Client)(nil)

// clock and id generator shared by the services; tests replace them.
type deps struct {
	now func() time.Time
	ids func() string
}

func defaultDeps() deps {
	return deps{now: time.Now, ids: uuid.NewString}
}

// findClient returns the client named by scope from its session's list.
func findClient(ctx context.Context, repo *storage.Repository, scope storage.Scope) (core.Client, error) {
	if scope.SessionEmail == "" {
		return core.Client{}, ErrNoSession
	}
	clients, err := repo.Clients(ctx, scope.SessionEmail)
	if err != nil {
		return core.Client{}, fmt.Errorf("load clients: %w", err)
	}
	for _, c := range clients {
		if c.ID == scope.ClientID {
			return c, nil
		}
	}
	return core.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, scope.ClientID)
}
