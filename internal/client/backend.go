package client

import (
	"context"

	model "tacly.com/taskboard/internal/models"
)

// SessionBackend binds a client to one session so it can serve as a
// board.Backend.
type SessionBackend struct {
	client  *Client
	session Session
}

func (c *Client) Backend(s Session) *SessionBackend {
	return &SessionBackend{client: c, session: s}
}

func (b *SessionBackend) ListTasks(ctx context.Context) ([]model.Task, error) {
	return b.client.ListTasks(ctx, b.session)
}

func (b *SessionBackend) UpdateTask(ctx context.Context, task model.Task) error {
	_, err := b.client.UpdateTask(ctx, b.session, task)
	return err
}
