package ports

import "time"

// AuditKind labels a security-relevant event emitted by the services.
type AuditKind string

const (
	AuditRegistered     AuditKind = "registered"
	AuditLoginSucceeded AuditKind = "login_succeeded"
	AuditLoginFailed    AuditKind = "login_failed"
	AuditPasswordChange AuditKind = "password_changed"
	AuditRenamed        AuditKind = "renamed"
	AuditRoleChanged    AuditKind = "role_changed"
	AuditDeactivated    AuditKind = "deactivated"
	AuditActivated      AuditKind = "activated"
)

// AuditEvent records who did what, and to whom, for asynchronous logging.
// SubjectID is the acted-upon identity; ActorID is the caller (empty for
// unauthenticated flows such as login attempts).
type AuditEvent struct {
	Kind      AuditKind
	SubjectID string
	ActorID   string
	Email     string
	At        time.Time
}

// AuditSink receives audit events off the request hot path. Implementations
// must not block the caller.
type AuditSink interface {
	Record(event AuditEvent)
}
