// Package fieldcrypt encrypts individual string values and the sensitive
// fields of a record.
//
// The service derives a 256-bit AES-GCM key from the configured secret once,
// at construction. Each encryption uses a fresh random nonce, so encrypting the
// same plaintext twice yields different ciphertexts. Ciphertext is a single
// hex string holding nonce and sealed payload.
//
// A service built without a secret still constructs, but every operation that
// would encrypt or decrypt returns ErrKeyNotConfigured. Nothing is ever
// written in plaintext as a fallback.
package fieldcrypt

import (
	"context"
	"log/slog"
	"maps"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

// MinSecretLength is the recommended minimum secret length. Shorter secrets
// are accepted with a warning.
const MinSecretLength = 32

// ErrKeyNotConfigured is returned by every operation when no secret was given.
var ErrKeyNotConfigured = dErrors.New(dErrors.CodeConfiguration, "ENCRYPTION_KEY not configured")

// Service encrypts and decrypts field values. Safe for concurrent use.
type Service struct {
	enc     *Encryptor
	fields  FieldSet
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFieldSet replaces the default sensitive field set.
func WithFieldSet(fields FieldSet) Option {
	return func(s *Service) {
		s.fields = fields
	}
}

// New creates a Service from secret. An empty secret yields a service whose
// operations all fail with ErrKeyNotConfigured.
func New(secret string, opts ...Option) (*Service, error) {
	s := &Service{
		fields: DefaultFieldSet(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if secret == "" {
		s.logger.Warn("ENCRYPTION_KEY not configured; sensitive field operations will fail")
		return s, nil
	}
	if len(secret) < MinSecretLength {
		s.logger.Warn("ENCRYPTION_KEY is shorter than recommended",
			"length", len(secret),
			"recommended", MinSecretLength,
		)
	}

	key, err := deriveKey(secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "derive encryption key")
	}
	enc, err := NewEncryptor(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "init encryptor")
	}
	s.enc = enc
	return s, nil
}

// Configured reports whether a secret was provided.
func (s *Service) Configured() bool { return s.enc != nil }

// Fields returns the sensitive field set.
func (s *Service) Fields() FieldSet { return s.fields }

// EncryptField encrypts a single value.
func (s *Service) EncryptField(plaintext string) (string, error) {
	if s.enc == nil {
		s.metrics.observe("encrypt", ErrKeyNotConfigured)
		return "", ErrKeyNotConfigured
	}
	out, err := s.enc.Encrypt(plaintext)
	s.metrics.observe("encrypt", err)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encrypt field")
	}
	return out, nil
}

// DecryptField decrypts a value produced by EncryptField. Malformed,
// truncated, tampered or foreign-key ciphertext fails with CodeDecryption.
func (s *Service) DecryptField(ciphertext string) (string, error) {
	if s.enc == nil {
		s.metrics.observe("decrypt", ErrKeyNotConfigured)
		return "", ErrKeyNotConfigured
	}
	out, err := s.enc.Decrypt(ciphertext)
	s.metrics.observe("decrypt", err)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeDecryption, "decrypt field")
	}
	return out, nil
}

// EncryptSensitive returns a copy of record with every present sensitive
// field encrypted. Nil values pass through. Non-string values are rejected.
// The input map is not modified.
func (s *Service) EncryptSensitive(record map[string]any) (map[string]any, error) {
	if record == nil {
		return nil, nil
	}
	out := maps.Clone(record)
	for key, v := range record {
		if !s.fields.Contains(key) || v == nil {
			continue
		}
		plain, ok := v.(string)
		if !ok {
			return nil, dErrors.NewField(dErrors.CodeInvalidInput, key, "type", "sensitive field must be a string")
		}
		enc, err := s.EncryptField(plain)
		if err != nil {
			return nil, err
		}
		out[key] = enc
	}
	return out, nil
}

// DecryptSensitive returns a copy of record with sensitive fields decrypted.
// A field that cannot be decrypted is left as stored; the failure is logged
// and counted but never returned. A missing key is still an error.
func (s *Service) DecryptSensitive(ctx context.Context, record map[string]any) (map[string]any, error) {
	if record == nil {
		return nil, nil
	}
	out := maps.Clone(record)
	for key, v := range record {
		if !s.fields.Contains(key) || v == nil {
			continue
		}
		if s.enc == nil {
			return nil, ErrKeyNotConfigured
		}
		stored, ok := v.(string)
		if !ok {
			s.logger.WarnContext(ctx, "sensitive field is not a string; left as stored", "field", key)
			s.metrics.incDecryptSkipped(key)
			continue
		}
		plain, err := s.DecryptField(stored)
		if err != nil {
			s.logger.WarnContext(ctx, "sensitive field could not be decrypted; left as stored",
				"field", key,
				"error", err,
			)
			s.metrics.incDecryptSkipped(key)
			continue
		}
		out[key] = plain
	}
	return out, nil
}
