package domain

import "time"

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingReturned  EventType = "booking.returned"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingExtended  EventType = "booking.extended"
	EventBookingModified  EventType = "booking.modified"
	EventBookingInspected EventType = "booking.inspected"
	EventBookingRefunded  EventType = "booking.refunded"
	EventDamageCreated    EventType = "damage.created"
	EventDamagePaid       EventType = "damage.paid"
	EventUserSignedUp     EventType = "user.signed_up"
	EventUserDeleted      EventType = "user.deleted"
	EventDataReset        EventType = "data.reset"

	// EventStoreChanged reports a write seen in storage but made by another process.
	EventStoreChanged EventType = "store.changed"
)

// ChangeEvent is published after a mutation has been committed to storage.
type ChangeEvent struct {
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id,omitempty"` // booking, damage request or user id
	CarName   string    `json:"car_name,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}
