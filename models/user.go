package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type UserType string

const (
	Tenant   UserType = "TENANT"
	Landlord UserType = "LANDLORD"
	Both     UserType = "BOTH"
)

func (t UserType) Valid() bool {
	switch t {
	case Tenant, Landlord, Both:
		return true
	}
	return false
}

// User is serialized as the public view other users see. Contact details,
// push tokens and account flags only leave through Profile.
type User struct {
	Base
	Email               string         `json:"-" gorm:"size:254;not null;uniqueIndex"`
	PhoneNumber         *string        `json:"-" gorm:"size:20;uniqueIndex"`
	Username            *string        `json:"username" gorm:"size:150;uniqueIndex"`
	FullName            string         `json:"fullName" gorm:"size:255;not null"`
	UserType            UserType       `json:"userType" gorm:"size:10;not null"`
	Password            string         `json:"-" gorm:"size:128;not null"`
	ProfilePicture      string         `json:"profilePicture"`
	Bio                 string         `json:"bio" gorm:"type:text"`
	IsVerified          bool           `json:"isVerified" gorm:"not null;default:false"`
	IsEmailVerified     bool           `json:"isEmailVerified" gorm:"not null;default:false"`
	IsPhoneVerified     bool           `json:"isPhoneVerified" gorm:"not null;default:false"`
	IsStaff             bool           `json:"-" gorm:"not null;default:false"`
	PushTokens          datatypes.JSON `json:"-"`
	AllowsNotifications bool           `json:"-" gorm:"not null;default:true"`
	LastLogin           *time.Time     `json:"-"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Profile is the account as its owner sees it.
type Profile struct {
	*User
	Email               string     `json:"email"`
	PhoneNumber         *string    `json:"phoneNumber"`
	IsStaff             bool       `json:"isStaff"`
	PushTokens          []string   `json:"pushTokens"`
	AllowsNotifications bool       `json:"allowsNotifications"`
	LastLogin           *time.Time `json:"lastLogin"`
}

func (u *User) Profile() Profile {
	return Profile{
		User:                u,
		Email:               u.Email,
		PhoneNumber:         u.PhoneNumber,
		IsStaff:             u.IsStaff,
		PushTokens:          u.Tokens(),
		AllowsNotifications: u.AllowsNotifications,
		LastLogin:           u.LastLogin,
	}
}

// Tokens decodes the stored Expo push tokens.
func (u *User) Tokens() []string {
	var tokens []string
	if len(u.PushTokens) == 0 {
		return nil
	}
	if err := json.Unmarshal(u.PushTokens, &tokens); err != nil {
		return nil
	}
	return tokens
}

func (u *User) CanOwnListings() bool {
	return u.UserType == Landlord || u.UserType == Both
}

func (u *User) CanApply() bool {
	return u.UserType == Tenant || u.UserType == Both
}
