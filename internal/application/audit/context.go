package audit

import "context"

type ipAddressKey struct{}

// WithIPAddress attaches the caller's IP address to ctx
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipAddressKey{}, ip)
}

// IPAddressFromContext returns the IP address set by WithIPAddress
func IPAddressFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ipAddressKey{}).(string); ok {
		return ip
	}
	return ""
}
