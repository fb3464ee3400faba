// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Gender is the stated gender of an attendee.
type Gender string

// Interest is the gender(s) of other attendees a user wants shown to them.
type Interest string

// Side is the half of the wedding party an attendee belongs to.
type Side string

// UserType gates admin-only operations such as deleting attendees.
type UserType string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"

	InterestMale   Interest = "MALE"
	InterestFemale Interest = "FEMALE"
	InterestBoth   Interest = "BOTH"

	SideGroom Side = "GROOM"
	SideBride Side = "BRIDE"

	UserTypeAdmin UserType = "ADMIN"
	UserTypeUser  UserType = "USER"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale
}

// ValidInterest reports whether i is one of the accepted interest values.
func ValidInterest(i Interest) bool {
	return i == InterestMale || i == InterestFemale || i == InterestBoth
}

// ValidSide reports whether s is one of the accepted side values.
func ValidSide(s Side) bool {
	return s == SideGroom || s == SideBride
}

// User represents an attendee in the singles pool.
//
// Non-admin users carry an empty password and authenticate by username
// alone; admin accounts carry a bcrypt hash.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Name      string    `gorm:"not null" json:"name"`
	Password  string    `json:"-"`
	Gender    Gender    `gorm:"type:varchar(8);not null" json:"gender"`
	Interest  Interest  `gorm:"type:varchar(8);not null" json:"interest"`
	Side      Side      `gorm:"type:varchar(8);not null" json:"side"`
	Type      UserType  `gorm:"type:varchar(8);not null;default:USER" json:"type"`
	Image     string    `json:"image"`
	Thumb     string    `json:"thumb"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin type.
func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

// Sanitized returns a copy of the user with the credential blanked, for
// embedding in sessions and API responses that echo the full record.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
