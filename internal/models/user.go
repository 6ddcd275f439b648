package models

import "time"

// User represents a registered account. Identity and authentication are
// handled by the auth service; the domain only consumes the id and the
// administrator flag.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"criado_em"`
}

// Caller is the resolved identity attached to every request after token
// verification. It is a plain value object, decoupled from the transport.
type Caller struct {
	ID       int64
	Username string
	IsAdmin  bool
}

// AccessKind classifies an operation for the ownership policy. Callers
// state the kind explicitly instead of inferring it from the HTTP method.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// CanAccess decides whether the caller may perform the given kind of
// operation on an order. Reads are always allowed for orders already
// scoped into the caller's visible set; writes require ownership or the
// administrator flag.
func CanAccess(caller Caller, order *Order, kind AccessKind) bool {
	if kind == AccessRead {
		return true
	}
	return caller.ID == order.UserID || caller.IsAdmin
}
