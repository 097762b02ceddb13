package storage

import (
	"context"
	"strings"
)

// Store is a string-valued key-value store. A missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Key layout, shared with data exported from the browser app.
const (
	keyPrefix          = "monotributo_"
	ClientsKeyPrefix   = keyPrefix + "clients_"
	InvoicesKeyPrefix  = keyPrefix + "invoices_"
	NotesKeyPrefix     = keyPrefix + "notes_"
	RegisteredUsersKey = keyPrefix + "registered_users"
)

// Scope addresses one client's collections inside an accountant session.
type Scope struct {
	SessionEmail string
	ClientID     string
}

func ClientsKey(email string) string {
	return ClientsKeyPrefix + email
}

func InvoicesKey(s Scope) string {
	return InvoicesKeyPrefix + s.SessionEmail + "_" + s.ClientID
}

func NotesKey(s Scope) string {
	return NotesKeyPrefix + s.SessionEmail + "_" + s.ClientID
}

// SessionFromClientsKey extracts the session email from a clients key.
func SessionFromClientsKey(key string) (string, bool) {
	if !strings.HasPrefix(key, ClientsKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, ClientsKeyPrefix), true
}
