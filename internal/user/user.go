package user

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date serialized as "2006-01-02", matching how clients
// submit birthdays.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a "2006-01-02" date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// User represents a registered account. Birthday must lie in the past and
// email is unique across accounts; both are enforced by the service layer
// before any write.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	PhoneNumber string    `json:"phoneNumber" validate:"required"`
	OpenNetwork bool      `json:"openNetwork"`
	CEP         string    `json:"cep" validate:"required"`
	Birthday    Date      `json:"birthday" validate:"-"`
	Biography   string    `json:"biography"`
	URLPicture  string    `json:"urlPicture,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
