package fetch

import "context"

// Pattern: Strategy -- swap the template origin without
// changing the download logic.

// Source returns the raw bytes of a named template file.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// SourceFunc adapts a plain function to the Source
// interface.
type SourceFunc func(ctx context.Context, name string) ([]byte, error)

// Fetch delegates to the wrapped function.
func (f SourceFunc) Fetch(
	ctx context.Context,
	name string,
) ([]byte, error) {
	return f(ctx, name)
}
