package identity

import (
	"net/mail"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level of a user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// bcrypt work factor; tests lower it
var passwordCost = 12

// User is a registered account, either a shopper or a back office admin
type User struct {
	shared.BaseAggregateRoot
	Email        string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email"`
	Name         string    `gorm:"type:varchar(200)"`
	Phone        string    `gorm:"type:varchar(50)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         Role      `gorm:"type:varchar(20);not null;index"`
	Addresses    []Address `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a hashed password
func NewUser(name, email, password string, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.InvalidInput("Unknown role")
	}
	if len(name) > 200 {
		return nil, shared.InvalidInput("Name cannot exceed 200 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      string(hash),
		Role:              role,
	}, nil
}

// NewCustomer registers a shopper account
func NewCustomer(name, email, password string) (*User, error) {
	return NewUser(name, email, password, RoleCustomer)
}

// VerifyPassword checks a plain text password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// SetPhone sets the contact phone
func (u *User) SetPhone(phone string) error {
	if len(phone) > 50 {
		return shared.InvalidInput("Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.Touch()
	return nil
}

// IsAdmin reports whether the user may use the back office
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the name, falling back to the email address
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.InvalidInput("Email is required")
	}
	if len(email) > 200 {
		return shared.InvalidInput("Email cannot exceed 200 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.InvalidInput("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return shared.InvalidInput("Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.InvalidInput("Password cannot exceed 72 characters")
	}
	return nil
}
