package ctxutil

import "context"

type ctxKey int

const (
	requestDataKey ctxKey = iota
	traceDataKey
)

// RequestData carries the authenticated learner, when auth is enabled.
type RequestData struct {
	LearnerID string
}

// TraceData identifies the request in logs and response headers.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := ctx.Value(requestDataKey).(*RequestData)
	return rd
}

// LearnerID returns the authenticated learner, or "" when the request carries none.
func LearnerID(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.LearnerID
	}
	return ""
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	td, _ := ctx.Value(traceDataKey).(*TraceData)
	return td
}
