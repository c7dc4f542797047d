package ctxutil

import (
	"context"
	"testing"
)

func TestRequestDataRoundTrip(t *testing.T) {
	ctx := Default(nil)
	if GetRequestData(ctx) != nil || GetIdentity(ctx) != nil {
		t.Fatalf("expected empty context")
	}
	ctx = WithRequestData(ctx, &RequestData{
		TraceID:   "t",
		RequestID: "r",
		Identity:  Identity{SessionID: "s", IPAddress: "192.0.2.1"},
	})
	if rd := GetRequestData(ctx); rd == nil || rd.TraceID != "t" || rd.RequestID != "r" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
	if id := GetIdentity(ctx); id == nil || id.SessionID != "s" || id.UserID != "" || id.IPAddress != "192.0.2.1" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if Default(context.TODO()) == nil {
		t.Fatalf("Default must keep a non-nil ctx")
	}
}
