package ports

import (
	"context"
	"errors"
	"time"

	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
)

// Table names used by the services. Adapters map them to physical tables.
const (
	TableUsers    = "users"
	TableProducts = "products"
	TableOrders   = "orders"
)

// ErrConditionFailed is returned by RecordStore.Update and Delete when the
// record exists but a Condition does not hold.
var ErrConditionFailed = errors.New("condition failed")

// ConditionOp is the comparison a Condition performs.
type ConditionOp string

const (
	OpEquals  ConditionOp = "EQUALS"
	OpAtLeast ConditionOp = "AT_LEAST"
)

// Condition guards a write on the current value of one attribute.
type Condition struct {
	Field string
	Op    ConditionOp
	Value interface{}
}

// Equals requires field == value. Used for ownership.
func Equals(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

// AtLeast requires field to exist and be >= n. Used for stock reservations.
func AtLeast(field string, n int) Condition {
	return Condition{Field: field, Op: OpAtLeast, Value: n}
}

// Update describes a partial write. Field names are the records' JSON names.
type Update struct {
	Set       map[string]interface{}
	Remove    []string
	Increment map[string]int
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.Remove) == 0 && len(u.Increment) == 0
}

// RecordStore is a keyed table abstraction. Every table is keyed by "id".
// Absent keys yield a NotFound application error; a failed Condition on an
// existing key yields ErrConditionFailed. There are no cross-table transactions.
type RecordStore interface {
	// Get loads the record into out.
	Get(ctx context.Context, table, id string, out interface{}) error

	// Put writes the whole record, replacing any existing one.
	Put(ctx context.Context, table string, record interface{}) error

	// Update applies upd when every condition holds and loads the new record into out (may be nil).
	Update(ctx context.Context, table, id string, upd Update, out interface{}, conds ...Condition) error

	// Delete removes the record when every condition holds.
	Delete(ctx context.Context, table, id string, conds ...Condition) error

	// Scan reads the whole table into out, which must point to a slice. O(table size).
	Scan(ctx context.Context, table string, out interface{}) error

	// Count returns the number of records in the table. O(table size).
	Count(ctx context.Context, table string) (int, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// ObjectStore holds uploaded files. Missing keys yield a NotFound application error.
type ObjectStore interface {
	Put(ctx context.Context, file *entities.StoredFile) (location string, err error)
	Get(ctx context.Context, key string) (*entities.StoredFile, error)
	Head(ctx context.Context, key string) (*entities.StoredFile, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string, maxKeys int) (files []entities.FileInfo, truncated bool, err error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	Bucket() string
}

// EventPublisher delivers lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Ping(ctx context.Context) error
}

// Notifier enqueues notifications for downstream delivery.
type Notifier interface {
	Send(ctx context.Context, n events.Notification) error
	Ping(ctx context.Context) error
}

// RecordName is the human name of a table's records, used in not-found messages.
func RecordName(table string) string {
	switch table {
	case TableUsers:
		return "User"
	case TableProducts:
		return "Product"
	case TableOrders:
		return "Order"
	default:
		return "Record"
	}
}
