package store

import "context"

type contextKey string

// SourceKey is the context key for the origin of a mutation.
const SourceKey contextKey = "cliptray_source"

// Mutation sources.
const (
	SourceExtension = "extension"
	SourceUI        = "ui"
	SourceCLI       = "cli"
)

// WithSource returns a new context tagged with the mutation source.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// SourceFromContext extracts the mutation source. Returns "" if not set.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(SourceKey).(string); ok {
		return v
	}
	return ""
}
