// Package domain holds storefront domain primitives that are validated at
// trust boundaries. Construct IDs via the Parse functions; direct casting from
// external input bypasses validation.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

// Typed identifiers keep user, product and order references from being mixed up.
type (
	UserID    uuid.UUID
	ProductID uuid.UUID
	OrderID   uuid.UUID
)

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ProductID) String() string { return uuid.UUID(id).String() }
func (id OrderID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a non-nil UUID user identifier.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseProductID parses a non-nil UUID product identifier.
func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s, "product ID")
	return ProductID(u), err
}

// ParseOrderID parses a non-nil UUID order identifier.
func ParseOrderID(s string) (OrderID, error) {
	u, err := parseUUID(s, "order ID")
	return OrderID(u), err
}

// parseUUID accepts only the canonical 36-character form so a parsed ID always
// round-trips through String.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) != 36 || strings.ContainsAny(s, "{}") {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
