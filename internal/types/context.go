package types

import "context"

type contextKey string

const (
	// JobIDKey is the context key for the id of the job driving a resolution.
	JobIDKey contextKey = "jobID"
	// ResolverNameKey is the context key for the resolver spec name of a race participant.
	ResolverNameKey contextKey = "resolverName"
)

// WithJobID returns a new context with the job id added.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, JobIDKey, id)
}

// JobIDFromContext returns the job id from the context.
func JobIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(JobIDKey).(string)
	return id, ok
}

// WithResolverName returns a new context with the resolver name added.
func WithResolverName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ResolverNameKey, name)
}

// ResolverNameFromContext returns the resolver name from the context.
func ResolverNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ResolverNameKey).(string)
	return name, ok
}
