package session

import "context"

// Generator rewrites a transcript for the chosen category.
type Generator interface {
	// ValidateCategory resolves a category id against the effective set
	// and returns its display name.
	ValidateCategory(id string) (string, error)
	Generate(ctx context.Context, categoryID, transcript string) (string, error)
}

// GeneratorFuncs adapts plain functions to the Generator interface.
type GeneratorFuncs struct {
	ValidateFunc func(id string) (string, error)
	GenerateFunc func(ctx context.Context, categoryID, transcript string) (string, error)
}

func (g GeneratorFuncs) ValidateCategory(id string) (string, error) {
	if g.ValidateFunc == nil {
		return id, nil
	}
	return g.ValidateFunc(id)
}

func (g GeneratorFuncs) Generate(ctx context.Context, categoryID, transcript string) (string, error) {
	if g.GenerateFunc == nil {
		return transcript, nil
	}
	return g.GenerateFunc(ctx, categoryID, transcript)
}
