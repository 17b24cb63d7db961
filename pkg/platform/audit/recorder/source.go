package recorder

import (
	"context"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

// UnknownSource is recorded when no address can be determined.
const UnknownSource = "unknown"

// SourceAddress resolves the address recorded for an entry: the explicit
// value, then the proxy-reported client IP, then the transport peer address.
func SourceAddress(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		return ip
	}
	if addr := requestcontext.RemoteAddr(ctx); addr != "" {
		return addr
	}
	return UnknownSource
}
