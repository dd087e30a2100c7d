package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventhub/pkg/domain"
)

func TestDecide(t *testing.T) {
	owner := domain.NewUserID()
	student := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
	ownerAdmin := domain.Actor{UserID: owner, Role: domain.RoleCollegeAdmin}
	otherAdmin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	superAdmin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleSuperAdmin}

	tests := []struct {
		name    string
		actor   domain.Actor
		action  Action
		res     Resource
		allowed bool
	}{
		{"zero actor denied", domain.Actor{}, ActionEventCreate, Resource{}, false},
		{"college-admin creates events", ownerAdmin, ActionEventCreate, Resource{}, true},
		{"student cannot create events", student, ActionEventCreate, Resource{}, false},
		{"super-admin cannot own events", superAdmin, ActionEventCreate, Resource{}, false},

		{"owner transitions own event", ownerAdmin, ActionEventTransition, Resource{OwnerID: owner}, true},
		{"non-owner admin denied", otherAdmin, ActionEventTransition, Resource{OwnerID: owner}, false},
		{"super-admin bypasses ownership", superAdmin, ActionEventTransition, Resource{OwnerID: owner}, true},
		{"student cannot transition", student, ActionEventTransition, Resource{OwnerID: owner}, false},

		{"owner edits capacity", ownerAdmin, ActionEventUpdateCapacity, Resource{OwnerID: owner}, true},
		{"non-owner admin cannot edit capacity", otherAdmin, ActionEventUpdateCapacity, Resource{OwnerID: owner}, false},

		{"student registers", student, ActionRegistrationCreate, Resource{}, true},
		{"admin cannot register", ownerAdmin, ActionRegistrationCreate, Resource{}, false},

		{"student cancels own registration", student, ActionRegistrationCancel, Resource{OwnerID: student.UserID}, true},
		{"student cannot cancel another's", student, ActionRegistrationCancel, Resource{OwnerID: owner}, false},
		{"admin cancels any registration", otherAdmin, ActionRegistrationCancel, Resource{OwnerID: student.UserID}, true},

		{"super-admin reads audit feed", superAdmin, ActionAuditRead, Resource{}, true},
		{"college-admin cannot read audit feed", ownerAdmin, ActionAuditRead, Resource{}, false},

		{"unknown action denied", superAdmin, Action("event.explode"), Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.actor, tt.action, tt.res)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	actor := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	res := Resource{OwnerID: actor.UserID}
	first := Decide(actor, ActionEventDelete, res)
	for range 10 {
		assert.Equal(t, first, Decide(actor, ActionEventDelete, res))
	}
}
