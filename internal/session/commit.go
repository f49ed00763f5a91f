package session

import "context"

// Commit describes one finished note ready for persistence.
type Commit struct {
	Transcript string
	Content    string
	CategoryID string
}

// Committer persists a finished note when generation succeeds.
type Committer interface {
	Commit(context.Context, Commit) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(context.Context, Commit) error

func (f CommitFunc) Commit(ctx context.Context, commit Commit) error {
	return f(ctx, commit)
}
