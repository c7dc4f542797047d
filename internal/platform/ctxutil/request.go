package ctxutil

import "context"

type requestDataKey struct{}

// Identity is the caller identity sent with a request. Every field may be empty.
type Identity struct {
	UserID    string
	SessionID string
	IPAddress string
}

// RequestData is attached once per HTTP request and read by logging and handlers.
type RequestData struct {
	TraceID   string
	RequestID string
	Identity  Identity
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// GetIdentity returns nil when no request data is attached.
func GetIdentity(ctx context.Context) *Identity {
	if rd := GetRequestData(ctx); rd != nil {
		return &rd.Identity
	}
	return nil
}
