// Package authz is the authorization policy: a pure function mapping
// (actor role, action, resource) to allow or deny. No I/O, no side
// effects, deterministic. Callers re-check policy immediately before each
// mutation; decisions are never cached across time because role and
// ownership can change.
package authz

import "eventhub/pkg/domain"

// Action names an operation gated by policy.
type Action string

const (
	ActionEventCreate         Action = "event.create"
	ActionEventTransition     Action = "event.transition"
	ActionEventUpdateCapacity Action = "event.update_capacity"
	ActionEventDelete         Action = "event.delete"
	ActionRegistrationCreate  Action = "registration.create"
	ActionRegistrationCancel  Action = "registration.cancel"
	ActionRegistrationList    Action = "registration.list"
	ActionFeedbackCreate      Action = "feedback.create"
	ActionAuditRead           Action = "audit.read"
)

// Resource carries the ownership facts policy needs. For event actions
// OwnerID is the event owner; for registration actions it is the
// registered student.
type Resource struct {
	OwnerID domain.UserID
}

// Decision is the policy outcome. Reason is set only on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide applies the role and ownership rules. Rule chain, fail-fast:
//  1. Unresolved actors are denied outright.
//  2. super-admin bypasses ownership checks on admin actions.
//  3. college-admin is scoped to resources it owns.
//  4. student may only act on its own registrations and feedback.
func Decide(actor domain.Actor, action Action, res Resource) Decision {
	if actor.IsZero() || !actor.Role.IsValid() {
		return deny("unresolved actor")
	}

	switch action {
	case ActionEventCreate:
		// Events are owned by the college-admin that creates them, so
		// creation is college-admin only.
		if actor.Role == domain.RoleCollegeAdmin {
			return allow()
		}
		return deny("only a college-admin may create events")

	case ActionEventTransition, ActionEventUpdateCapacity, ActionEventDelete, ActionRegistrationList:
		if actor.Role == domain.RoleSuperAdmin {
			return allow()
		}
		if actor.Role == domain.RoleCollegeAdmin {
			if actor.UserID == res.OwnerID {
				return allow()
			}
			return deny("college-admin is scoped to events it owns")
		}
		return deny("students may not administer events")

	case ActionRegistrationCreate, ActionFeedbackCreate:
		if actor.Role == domain.RoleStudent {
			return allow()
		}
		return deny("only students may register or leave feedback")

	case ActionRegistrationCancel:
		if actor.Role.IsAdmin() {
			return allow()
		}
		if actor.UserID == res.OwnerID {
			return allow()
		}
		return deny("students may only cancel their own registrations")

	case ActionAuditRead:
		if actor.Role == domain.RoleSuperAdmin {
			return allow()
		}
		return deny("the audit feed is super-admin only")
	}

	return deny("unknown action")
}
