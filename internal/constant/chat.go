package constant

// Turn roles
const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Session statuses. Transitions are owned by the session service:
// created -> processing -> ready | error. A ready session can only
// become error through a new processing attempt.
const (
	SessionStatusCreated    = "created"
	SessionStatusProcessing = "processing"
	SessionStatusReady      = "ready"
	SessionStatusError      = "error"
)

// Session file states
const (
	FileStatePending = "pending"
	FileStateIndexed = "indexed"
	FileStateFailed  = "failed"
)

// Pub/sub topics
const (
	SessionCleanupTopic = "session.cleanup"
)

// NATS lifecycle event types
const (
	EventSessionProcessed = "SESSION_PROCESSED"
	EventSessionFailed    = "SESSION_FAILED"
	EventSessionDeleted   = "SESSION_DELETED"
)
