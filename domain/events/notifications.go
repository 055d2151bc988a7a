package events

// Notification types derived from lifecycle events.
const (
	NotificationUserWelcome       = "USER_WELCOME"
	NotificationOrderConfirmation = "ORDER_CONFIRMATION"
	NotificationProductAdded      = "PRODUCT_NOTIFICATION"
)

// Notification is a message placed on the notification queue.
type Notification struct {
	Type      string `json:"type"`
	UserID    string `json:"userId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
