package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"monotributo/internal/core"
	"monotributo/internal/storage"
)

// NoteDateLayout renders note dates as DD/MM/YYYY.
const NoteDateLayout = "02/01/2006"

type NoteService struct {
	repo *storage.Repository
	deps

	mu sync.Mutex
}

func NewNoteService(repo *storage.Repository) *NoteService {
	return &NoteService{repo: repo, deps: defaultDeps()}
}

func (s *NoteService) List(ctx context.Context, scope storage.Scope) ([]core.Note, error) {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return nil, err
	}
	notes, err := s.repo.Notes(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return notes, nil
}

// Add stamps the note with today's date and puts it first.
func (s *NoteService) Add(ctx context.Context, scope storage.Scope, title, content string) (core.Note, error) {
	n := core.Note{
		ID:       s.ids(),
		ClientID: scope.ClientID,
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		Date:     s.now().Format(NoteDateLayout),
	}
	if err := n.Validate(); err != nil {
		return core.Note{}, err
	}
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return core.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.repo.Notes(ctx, scope)
	if err != nil {
		return core.Note{}, fmt.Errorf("load notes: %w", err)
	}
	if err := s.repo.SaveNotes(ctx, scope, append([]core.Note{n}, notes...)); err != nil {
		return core.Note{}, fmt.Errorf("save notes: %w", err)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, scope storage.Scope, noteID string) error {
	if _, err := findClient(ctx, s.repo, scope); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.repo.Notes(ctx, scope)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	kept := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
	}
	if err := s.repo.SaveNotes(ctx, scope, kept); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}
