package fieldcrypt

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

const testSecret = "0123456789abcdef0123456789abcdef-storefront"

func newService(t *testing.T, secret string, opts ...Option) *Service {
	t.Helper()
	svc, err := New(secret, opts...)
	require.NoError(t, err)
	return svc
}

func TestEncryptField_RoundTrip(t *testing.T) {
	svc := newService(t, testSecret)

	for _, plain := range []string{"", "+91 98450 12345", "12, MG Road, Bengaluru", "नमस्ते 🏏"} {
		ct, err := svc.EncryptField(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, ct)
		_, err = hex.DecodeString(ct)
		assert.NoError(t, err, "ciphertext is a single hex string")

		got, err := svc.DecryptField(ct)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestEncryptField_NonDeterministic(t *testing.T) {
	svc := newService(t, testSecret)

	a, err := svc.EncryptField("same value")
	require.NoError(t, err)
	b, err := svc.EncryptField("same value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptField_Rejects(t *testing.T) {
	svc := newService(t, testSecret)
	good, err := svc.EncryptField("secret")
	require.NoError(t, err)

	tampered := []byte(good)
	last := len(tampered) - 1
	if tampered[last] == '0' {
		tampered[last] = '1'
	} else {
		tampered[last] = '0'
	}

	other := newService(t, "another-secret-that-is-long-enough-1234")
	foreign, err := other.EncryptField("secret")
	require.NoError(t, err)

	cases := map[string]string{
		"not hex":     "zz-not-hex",
		"empty":       "",
		"truncated":   good[:20],
		"tampered":    string(tampered),
		"foreign key": foreign,
	}
	for name, ct := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.DecryptField(ct)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryption))
		})
	}
}

func TestMissingKey(t *testing.T) {
	svc := newService(t, "", WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	assert.False(t, svc.Configured())

	_, err := svc.EncryptField("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyNotConfigured))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	assert.Equal(t, "ENCRYPTION_KEY not configured", err.Error())

	_, err = svc.DecryptField("00")
	assert.True(t, errors.Is(err, ErrKeyNotConfigured))

	_, err = svc.EncryptSensitive(map[string]any{"phone": "123"})
	assert.True(t, errors.Is(err, ErrKeyNotConfigured))

	_, err = svc.DecryptSensitive(context.Background(), map[string]any{"phone": "abcd"})
	assert.True(t, errors.Is(err, ErrKeyNotConfigured))

	out, err := svc.EncryptSensitive(map[string]any{"name": "Asha"})
	require.NoError(t, err, "records without sensitive fields need no key")
	assert.Equal(t, "Asha", out["name"])
}

func TestNew_ShortSecretWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	svc := newService(t, "short", WithLogger(logger))
	assert.True(t, svc.Configured())
	assert.Contains(t, buf.String(), "shorter than recommended")

	buf.Reset()
	newService(t, testSecret, WithLogger(logger))
	assert.Empty(t, buf.String())
}

func TestEncryptSensitive(t *testing.T) {
	svc := newService(t, testSecret)
	record := map[string]any{
		"name":            "Asha",
		"email":           "asha@example.com",
		"phone":           "+91 98450 12345",
		"shippingAddress": "12, MG Road",
		"address":         nil,
	}

	enc, err := svc.EncryptSensitive(record)
	require.NoError(t, err)

	assert.Equal(t, "Asha", enc["name"])
	assert.Equal(t, "asha@example.com", enc["email"])
	assert.Nil(t, enc["address"])
	assert.NotEqual(t, "+91 98450 12345", enc["phone"])
	assert.NotEqual(t, "12, MG Road", enc["shippingAddress"])
	assert.Equal(t, "+91 98450 12345", record["phone"], "input is not modified")

	dec, err := svc.DecryptSensitive(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, record, dec)
}

func TestEncryptSensitive_RejectsNonString(t *testing.T) {
	svc := newService(t, testSecret)

	_, err := svc.EncryptSensitive(map[string]any{"phone": 9845012345})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "phone", de.Field)
}

func TestDecryptSensitive_LeavesUndecryptableFields(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := newService(t, testSecret,
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		WithMetrics(metrics),
	)

	goodPhone, err := svc.EncryptField("+91 98450 12345")
	require.NoError(t, err)

	stored := map[string]any{
		"phone":           goodPhone,
		"address":         "legacy plaintext address",
		"shippingAddress": 42,
		"name":            "Asha",
	}
	out, err := svc.DecryptSensitive(context.Background(), stored)
	require.NoError(t, err)

	assert.Equal(t, "+91 98450 12345", out["phone"])
	assert.Equal(t, "legacy plaintext address", out["address"])
	assert.Equal(t, 42, out["shippingAddress"])
	assert.Equal(t, "Asha", out["name"])
	assert.Equal(t, goodPhone, stored["phone"], "input is not modified")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecryptSkipped.WithLabelValues("address")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecryptSkipped.WithLabelValues("shippingAddress")))
	assert.NotContains(t, buf.String(), "legacy plaintext address", "values are never logged")
	assert.Equal(t, 2, strings.Count(buf.String(), "left as stored"))
}

func TestWithFieldSet(t *testing.T) {
	svc := newService(t, testSecret, WithFieldSet(NewFieldSet("gstin", " phone ", "gstin", "")))
	assert.Equal(t, []string{"gstin", "phone"}, svc.Fields().Names())

	out, err := svc.EncryptSensitive(map[string]any{"gstin": "29ABCDE1234F1Z5", "address": "plain"})
	require.NoError(t, err)
	assert.NotEqual(t, "29ABCDE1234F1Z5", out["gstin"])
	assert.Equal(t, "plain", out["address"])
}

func TestNilRecord(t *testing.T) {
	svc := newService(t, testSecret)
	out, err := svc.EncryptSensitive(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
