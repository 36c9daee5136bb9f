package context

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "observability_request_id"
	workshopIDKey contextKey = "observability_workshop_id"
	actorKey      contextKey = "observability_actor"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithWorkshopID(ctx context.Context, workshopID string) context.Context {
	if ctx == nil || workshopID == "" {
		return ctx
	}
	return context.WithValue(ctx, workshopIDKey, workshopID)
}

func WorkshopIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(workshopIDKey).(string)
	return value
}

func WithActor(ctx context.Context, actor string) context.Context {
	if ctx == nil || actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(actorKey).(string)
	return value
}
