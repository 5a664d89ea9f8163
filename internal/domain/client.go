package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is a postal address; State is mandatory because it drives the
// intra-state vs inter-state GST split.
type Address struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   string  `json:"state"`
	Pincode *string `json:"pincode,omitempty"`
}

type Client struct {
	ID            int32     `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	ClientName    string    `json:"clientName"`
	ContactPerson *string   `json:"contactPerson,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	GSTIN         *string   `json:"gstin,omitempty"`
	Address       Address   `json:"address"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ClientRepository interface {
	Create(client *Client) (*Client, error)
	GetByID(userID uuid.UUID, id int32) (*Client, error)
	GetByUser(userID uuid.UUID, search string) ([]*Client, error)
	Update(userID uuid.UUID, id int32, client *Client) (*Client, error)
	Delete(userID uuid.UUID, id int32) error
}
