package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"monotributo/internal/core"
	"monotributo/internal/storage"
)

// Defaults for a newly created client.
const (
	DefaultCategory    = "A"
	DefaultNextRenewal = "20-07-2024"
)

// ClientService manages a session's client list.
type ClientService struct {
	repo *storage.Repository
	deps

	mu sync.Mutex
}

func NewClientService(repo *storage.Repository) *ClientService {
	return &ClientService{repo: repo, deps: defaultDeps()}
}

func (s *ClientService) List(ctx context.Context, email string) ([]core.Client, error) {
	if email == "" {
		return nil, ErrNoSession
	}
	clients, err := s.repo.Clients(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	return clients, nil
}

// Search matches term against the name, case-insensitively, or as a
// substring of the CUIT. An empty term lists everything.
func (s *ClientService) Search(ctx context.Context, email, term string) ([]core.Client, error) {
	clients, err := s.List(ctx, email)
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return clients, nil
	}
	lower := strings.ToLower(term)
	out := make([]core.Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), lower) || strings.Contains(c.CUIT, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ClientService) Get(ctx context.Context, email, id string) (core.Client, error) {
	return findClient(ctx, s.repo, storage.Scope{SessionEmail: email, ClientID: id})
}

// Create appends a client with a fresh id, category A when none is given
// and the default renewal date.
func (s *ClientService) Create(ctx context.Context, email string, c core.Client) (core.Client, error) {
	if email == "" {
		return core.Client{}, ErrNoSession
	}
	c.ID = s.ids()
	if strings.TrimSpace(c.Category) == "" {
		c.Category = DefaultCategory
	}
	if c.NextRenewal == "" {
		c.NextRenewal = DefaultNextRenewal
	}
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clients, err := s.repo.Clients(ctx, email)
	if err != nil {
		return core.Client{}, fmt.Errorf("load clients: %w", err)
	}
	if err := s.repo.SaveClients(ctx, email, append(clients, c)); err != nil {
		return core.Client{}, fmt.Errorf("save clients: %w", err)
	}
	return c, nil
}

// Update overwrites the editable fields of client id. The id and the next
// renewal date are kept.
func (s *ClientService) Update(ctx context.Context, email, id string, in core.Client) (core.Client, error) {
	if email == "" {
		return core.Client{}, ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.repo.Clients(ctx, email)
	if err != nil {
		return core.Client{}, fmt.Errorf("load clients: %w", err)
	}
	for i, c := range clients {
		if c.ID != id {
			continue
		}
		c.Name, c.CUIT, c.Category = in.Name, in.CUIT, in.Category
		c.Phone, c.Email, c.Address = in.Phone, in.Email, in.Address
		if strings.TrimSpace(c.Category) == "" {
			c.Category = DefaultCategory
		}
		if err := c.Validate(); err != nil {
			return core.Client{}, err
		}
		clients[i] = c
		if err := s.repo.SaveClients(ctx, email, clients); err != nil {
			return core.Client{}, fmt.Errorf("save clients: %w", err)
		}
		return c, nil
	}
	return core.Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
}

// Delete removes the client together with its invoices and notes.
func (s *ClientService) Delete(ctx context.Context, email, id string) error {
	if email == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.repo.Clients(ctx, email)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	kept := make([]core.Client, 0, len(clients))
	for _, c := range clients {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(clients) {
		return fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	if err := s.repo.SaveClients(ctx, email, kept); err != nil {
		return fmt.Errorf("save clients: %w", err)
	}
	if err := s.repo.DeleteClientData(ctx, storage.Scope{SessionEmail: email, ClientID: id}); err != nil {
		return fmt.Errorf("delete client data: %w", err)
	}
	return nil
}
