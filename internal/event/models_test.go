package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusDraft, StatusPublished, StatusActive, StatusCompleted, StatusCancelled}

	allowed := map[Status][]Status{
		StatusDraft:     {StatusPublished, StatusCancelled},
		StatusPublished: {StatusActive, StatusCancelled},
		StatusActive:    {StatusCompleted, StatusCancelled},
		StatusCompleted: nil,
		StatusCancelled: nil,
	}

	for from, targets := range allowed {
		legal := make(map[Status]bool, len(targets))
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			assert.Equal(t, legal[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())

	assert.True(t, StatusPublished.IsOpen())
	assert.True(t, StatusActive.IsOpen())
	assert.False(t, StatusDraft.IsOpen())
	assert.False(t, StatusCompleted.IsOpen())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("published")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, status)

	_, err = ParseStatus("archived")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewValidation(t *testing.T) {
	now := time.Now()
	id := domain.NewEventID()
	owner := domain.NewUserID()

	tests := []struct {
		name     string
		title    string
		schedule time.Time
		capacity int
		wantErr  bool
	}{
		{"valid", "Hack Night", now.Add(time.Hour), 50, false},
		{"zero capacity valid", "Hack Night", now.Add(time.Hour), 0, false},
		{"empty title", "   ", now.Add(time.Hour), 50, true},
		{"negative capacity", "Hack Night", now.Add(time.Hour), -1, true},
		{"past schedule", "Hack Night", now.Add(-time.Hour), 50, true},
		{"schedule equals now", "Hack Night", now, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(id, owner, tt.title, "", tt.schedule, tt.capacity, now)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusDraft, e.Status)
			assert.Equal(t, owner, e.OwnerID)
		})
	}
}

func TestNewTrimsFields(t *testing.T) {
	now := time.Now()
	e, err := New(domain.NewEventID(), domain.NewUserID(), "  Hack Night  ", "  bring laptops  ", now.Add(time.Hour), 10, now)
	require.NoError(t, err)
	assert.Equal(t, "Hack Night", e.Title)
	assert.Equal(t, "bring laptops", e.Description)
}

func TestCanTransitionError(t *testing.T) {
	e := &Event{Status: StatusDraft}

	require.NoError(t, e.CanTransition(StatusPublished))

	err := e.CanTransition(StatusActive)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestCapacityLockedOnceActive(t *testing.T) {
	now := time.Now()

	for _, status := range []Status{StatusDraft, StatusPublished} {
		e := &Event{Status: status, Capacity: 10}
		require.NoError(t, e.CanUpdateCapacity(20), "status %s", status)
		e.ApplyCapacity(20, now)
		assert.Equal(t, 20, e.Capacity)
	}

	for _, status := range []Status{StatusActive, StatusCompleted, StatusCancelled} {
		e := &Event{Status: status, Capacity: 10}
		err := e.CanUpdateCapacity(20)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCapacityLocked), "status %s", status)
	}

	e := &Event{Status: StatusDraft, Capacity: 10}
	err := e.CanUpdateCapacity(-5)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
