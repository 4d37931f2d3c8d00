package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is a shipping address owned by a user
type Address struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Street    string    `gorm:"type:varchar(255);not null"`
	City      string    `gorm:"type:varchar(100);not null"`
	State     string    `gorm:"type:varchar(100);not null"`
	ZipCode   string    `gorm:"type:varchar(20);not null"`
	Country   string    `gorm:"type:varchar(100);not null"`
	IsDefault bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// AddressInput carries the postal fields of an address
type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// NewAddress validates and creates an address for userID
func NewAddress(userID uuid.UUID, in AddressInput, isDefault bool) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.InvalidInput("User is required")
	}
	fields := map[string]string{
		"street":  in.Street,
		"city":    in.City,
		"state":   in.State,
		"zipCode": in.ZipCode,
		"country": in.Country,
	}
	for _, name := range []string{"street", "city", "state", "zipCode", "country"} {
		if strings.TrimSpace(fields[name]) == "" {
			return nil, shared.InvalidInput("Address " + name + " is required")
		}
	}
	return &Address{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		ZipCode:    strings.TrimSpace(in.ZipCode),
		Country:    strings.TrimSpace(in.Country),
		IsDefault:  isDefault,
	}, nil
}
