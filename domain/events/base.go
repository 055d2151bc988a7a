package events

import "time"

// Lifecycle event types published after a successful write.
const (
	UserCreated    = "USER_CREATED"
	UserUpdated    = "USER_UPDATED"
	UserDeleted    = "USER_DELETED"
	ProductCreated = "PRODUCT_CREATED"
	ProductUpdated = "PRODUCT_UPDATED"
	ProductDeleted = "PRODUCT_DELETED"
	OrderCreated   = "ORDER_CREATED"
	FileUploaded   = "FILE_UPLOADED"
	FileDeleted    = "FILE_DELETED"
)

// Source is the EventBridge source every lifecycle event is published under.
const Source = "crud.microservices"

// Envelope is the wire shape of a lifecycle event.
type Envelope struct {
	EventType string      `json:"eventType"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// NewEnvelope stamps data with the event type and time.
func NewEnvelope(eventType string, data interface{}, at time.Time) Envelope {
	return Envelope{
		EventType: eventType,
		Data:      data,
		Timestamp: at.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// Deleted is the payload of *_DELETED events.
type Deleted struct {
	ID string `json:"id"`
}
