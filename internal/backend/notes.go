package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// Notes lists the user's notes.
func (c *Client) Notes(ctx context.Context) ([]models.Note, error) {
	var env envelope[[]models.Note]
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}
	if err := env.check("/notes"); err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}
	if env.Data == nil {
		return []models.Note{}, nil
	}
	return env.Data, nil
}

// Note fetches a single note. A missing note matches ErrNotFound.
func (c *Client) Note(ctx context.Context, id int64) (models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, &note); err != nil {
		return models.Note{}, fmt.Errorf("fetch note %d: %w", id, err)
	}
	return note, nil
}

// CreateNote stores a new note and returns it as saved by the backend.
func (c *Client) CreateNote(ctx context.Context, in models.NoteInput) (models.Note, error) {
	in, err := normalizeNote(in)
	if err != nil {
		return models.Note{}, err
	}
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/notes", in, &note); err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces the title and description of a note.
func (c *Client) UpdateNote(ctx context.Context, id int64, in models.NoteInput) (models.Note, error) {
	in, err := normalizeNote(in)
	if err != nil {
		return models.Note{}, err
	}
	var note models.Note
	if err := c.do(ctx, http.MethodPut, notePath(id), in, &note); err != nil {
		return models.Note{}, fmt.Errorf("update note %d: %w", id, err)
	}
	return note, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, notePath(id), nil, nil); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func notePath(id int64) string {
	return "/notes/" + strconv.FormatInt(id, 10)
}

func normalizeNote(in models.NoteInput) (models.NoteInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, fmt.Errorf("note title is required")
	}
	return in, nil
}
