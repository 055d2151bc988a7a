package entities

import "time"

// User is a person registered with the service. The record's ID is also its owner.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Confirmed *bool     `json:"confirmed,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID may read or mutate the record.
func (u *User) OwnedBy(userID string) bool {
	return u.ID == userID
}
