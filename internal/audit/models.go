package audit

import (
	"time"

	"github.com/google/uuid"

	"eventhub/pkg/domain"
)

// Action tags the mutation an entry records.
type Action string

const (
	ActionEventCreate         Action = "event.create"
	ActionEventTransition     Action = "event.transition"
	ActionEventUpdateCapacity Action = "event.update_capacity"
	ActionEventDelete         Action = "event.delete"
	ActionRegistrationCreate  Action = "registration.create"
	ActionRegistrationCancel  Action = "registration.cancel"
	ActionRegistrationPromote Action = "registration.promote"
	ActionRegistrationList    Action = "registration.list"
	ActionFeedbackCreate      Action = "feedback.create"
	ActionUserRegister        Action = "user.register"
	ActionUserLogin           Action = "user.login"
	ActionUserLogout          Action = "user.logout"
	ActionAuditRead           Action = "audit.read"
)

// Outcome records whether the attempted mutation was applied or denied.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
)

// TargetType names the aggregate an entry refers to.
type TargetType string

const (
	TargetEvent        TargetType = "event"
	TargetRegistration TargetType = "registration"
	TargetUser         TargetType = "user"
	TargetFeedback     TargetType = "feedback"
)

// Entry is an immutable record of a privileged action's attempt and
// outcome. Entries are append-only; nothing mutates or deletes them.
type Entry struct {
	ID         uuid.UUID     `json:"id"`
	ActorID    domain.UserID `json:"actorId"`
	ActorRole  domain.Role   `json:"actorRole"`
	Action     Action        `json:"action"`
	TargetType TargetType    `json:"targetType"`
	TargetID   string        `json:"targetId"`
	Timestamp  time.Time     `json:"timestamp"`
	Outcome    Outcome       `json:"outcome"`
	Reason     string        `json:"reason,omitempty"`
	ClientIP   string        `json:"clientIp,omitempty"`
	UserAgent  string        `json:"userAgent,omitempty"`
	RequestID  string        `json:"requestId,omitempty"`
}
