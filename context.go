package authcore

import (
	"context"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/session"
)

type clientIPContextKey struct{}
type userAgentContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The engine
// records it on new refresh sessions and in audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. It is
// classified into the device descriptor stored on new sessions.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}

func deviceFromContext(ctx context.Context) session.DeviceInfo {
	deviceType, os, browser := internal.ClassifyUserAgent(userAgentFromContext(ctx))
	return session.DeviceInfo{
		DeviceType: deviceType,
		OS:         os,
		Browser:    browser,
		IP:         clientIPFromContext(ctx),
	}
}
