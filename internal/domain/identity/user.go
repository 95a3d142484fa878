package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole represents the role a user acts under
type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"   // Full access across all portfolios
	UserRoleOwner   UserRole = "OWNER"   // Manages own properties, leases, payments
	UserRoleManager UserRole = "MANAGER" // Day-to-day management on behalf of owners
	UserRoleTenant  UserRole = "TENANT"  // Views own leases and payments
)

// IsValid checks if the role is a valid UserRole
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOwner, UserRoleManager, UserRoleTenant:
		return true
	}
	return false
}

// String returns the string representation of UserRole
func (r UserRole) String() string {
	return string(r)
}

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive      UserStatus = "ACTIVE"
	UserStatusDeactivated UserStatus = "DEACTIVATED"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a system user. Every mutating operation in the system is
// attributed to a user passed explicitly as the actor; there is no ambient
// current-user state.
type User struct {
	shared.BaseAggregateRoot
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	FirstName    string     `gorm:"type:varchar(100)"`
	LastName     string     `gorm:"type:varchar(100)"`
	Phone        string     `gorm:"type:varchar(50)"`
	Role         UserRole   `gorm:"type:varchar(20);not null;index"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(email, password string, role UserRole) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, shared.NewValidationError("email", "invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password", "password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("password", "password cannot exceed 72 characters")
	}
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetName sets the user's name
func (u *User) SetName(firstName, lastName string) {
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// FullName returns the display name, falling back to the email
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate disables the account
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("INVALID_STATE", "User is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// IsActive reports whether the account can authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsAdmin reports whether the user bypasses ownership checks
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
