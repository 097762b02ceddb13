package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"monotributo/internal/core"
)

type (
	// ImportRecord is one entry of the import audit trail.
	ImportRecord struct {
		Scope      Scope     `json:"-"`
		Format     string    `json:"format"`
		Direction  string    `json:"direction"`
		Parsed     int       `json:"parsed"`
		Accepted   int       `json:"accepted"`
		Duplicates int       `json:"duplicates"`
		Skipped    int       `json:"skipped"`
		Warnings   int       `json:"warnings"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	ImportLog interface {
		RecordImport(ctx context.Context, rec ImportRecord) error
		ImportHistory(ctx context.Context, scope Scope, limit int) ([]ImportRecord, error)
	}

	// Repository reads and writes whole JSON collections through a Store.
	// Every save overwrites the collection under its key.
	Repository struct {
		store Store
	}
)

func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// Store exposes the underlying store, e.g. for an ImportLog assertion.
func (r *Repository) Store() Store {
	return r.store
}

func (r *Repository) Clients(ctx context.Context, email string) ([]core.Client, error) {
	return load[core.Client](ctx, r.store, ClientsKey(email))
}

func (r *Repository) SaveClients(ctx context.Context, email string, clients []core.Client) error {
	return save(ctx, r.store, ClientsKey(email), clients)
}

func (r *Repository) Invoices(ctx context.Context, s Scope) ([]core.Invoice, error) {
	return load[core.Invoice](ctx, r.store, InvoicesKey(s))
}

func (r *Repository) SaveInvoices(ctx context.Context, s Scope, invoices []core.Invoice) error {
	return save(ctx, r.store, InvoicesKey(s), invoices)
}

func (r *Repository) Notes(ctx context.Context, s Scope) ([]core.Note, error) {
	return load[core.Note](ctx, r.store, NotesKey(s))
}

func (r *Repository) SaveNotes(ctx context.Context, s Scope, notes []core.Note) error {
	return save(ctx, r.store, NotesKey(s), notes)
}

func (r *Repository) RegisteredUsers(ctx context.Context) ([]core.RegisteredUser, error) {
	return load[core.RegisteredUser](ctx, r.store, RegisteredUsersKey)
}

func (r *Repository) SaveRegisteredUsers(ctx context.Context, users []core.RegisteredUser) error {
	return save(ctx, r.store, RegisteredUsersKey, users)
}

// DeleteClientData removes the client's invoices and notes.
func (r *Repository) DeleteClientData(ctx context.Context, s Scope) error {
	if err := r.store.Delete(ctx, InvoicesKey(s)); err != nil {
		return fmt.Errorf("delete invoices: %w", err)
	}
	if err := r.store.Delete(ctx, NotesKey(s)); err != nil {
		return fmt.Errorf("delete notes: %w", err)
	}
	return nil
}

// FindClient looks for clientID in every session's client list. It is how
// the public report resolves a bare client id.
func (r *Repository) FindClient(ctx context.Context, clientID string) (core.Client, Scope, bool, error) {
	keys, err := r.store.Keys(ctx, ClientsKeyPrefix)
	if err != nil {
		return core.Client{}, Scope{}, false, fmt.Errorf("list client keys: %w", err)
	}
	for _, k := range keys {
		email, _ := SessionFromClientsKey(k)
		clients, err := r.Clients(ctx, email)
		if err != nil {
			return core.Client{}, Scope{}, false, err
		}
		for _, c := range clients {
			if c.ID == clientID {
				return c, Scope{SessionEmail: email, ClientID: clientID}, true, nil
			}
		}
	}
	return core.Client{}, Scope{}, false, nil
}

// Sessions lists the session emails that own a client list.
func (r *Repository) Sessions(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, ClientsKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list client keys: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if email, ok := SessionFromClientsKey(k); ok {
			out = append(out, email)
		}
	}
	return out, nil
}

// load treats a missing or empty key as an empty collection.
func load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func save[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
