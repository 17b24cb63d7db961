package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/requestcontext"
)

func TestParseTrustedProxies(t *testing.T) {
	tp, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "", "2001:db8::/32"})
	require.NoError(t, err)

	assert.True(t, tp.Trusts("10.1.2.3"))
	assert.True(t, tp.Trusts("192.0.2.1"))
	assert.True(t, tp.Trusts("::ffff:192.0.2.1"), "ipv4-mapped peers match")
	assert.True(t, tp.Trusts("2001:db8::1"))
	assert.False(t, tp.Trusts("192.0.2.2"))
	assert.False(t, tp.Trusts("not-an-ip"))

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)

	var none *TrustedProxies
	assert.False(t, none.Trusts("10.0.0.1"))
}

func TestClientIPFromRequest(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		trusted    *TrustedProxies
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"untrusted peer ignores forwarded header", nil, map[string]string{"X-Forwarded-For": "203.0.113.7"}, "198.51.100.9:5000", "198.51.100.9"},
		{"untrusted peer ignores real ip header", nil, map[string]string{"X-Real-IP": "203.0.113.7"}, "198.51.100.9:5000", "198.51.100.9"},
		{"trusted proxy forwards client", trusted, map[string]string{"X-Forwarded-For": "203.0.113.7"}, "10.0.0.2:5000", "203.0.113.7"},
		{"rightmost untrusted hop wins", trusted, map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"trusted proxy real ip header", trusted, map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:5000", "198.51.100.4"},
		{"trusted proxy without headers", trusted, nil, "10.0.0.2:5000", "10.0.0.2"},
		{"all hops trusted", trusted, map[string]string{"X-Forwarded-For": "10.0.0.3, "}, "10.0.0.2:5000", "10.0.0.2"},
		{"remote ipv6", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing", nil, nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.trusted))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.2"})
	require.NoError(t, err)

	var ip, peer, ua string
	h := ClientMetadata(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		peer = requestcontext.RemoteAddr(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	r.Header.Set("User-Agent", "curl/8.4.0")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "10.0.0.2", peer)
	assert.Equal(t, "curl/8.4.0", ua)
}
