package models

// Auth provider tags recorded on a user. OTP login rewrites the tag so the
// account stays passcode-capable going forward.
const (
	ProviderPassword = "password"
	ProviderOTP      = "otp"
	ProviderGoogle   = "google"
)

// User represents an authenticated customer. Email, phone and provider id are
// optional but unique when present; at least one of them is always set.
type User struct {
	BaseModel
	DisplayName  string  `json:"display_name"`
	Email        *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        *string `gorm:"uniqueIndex" json:"phone,omitempty"`
	ProviderID   *string `gorm:"uniqueIndex" json:"-"`
	PasswordHash string  `json:"-"`
	Provider     string  `json:"provider"`
	Avatar       string  `json:"avatar,omitempty"`
	IsAdmin      bool    `json:"is_admin"`
	Orders       []Order `json:"orders,omitempty"`
}

// PublicMap returns the fields safe to echo back to clients.
func (u *User) PublicMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":           u.ID,
		"display_name": u.DisplayName,
		"provider":     u.Provider,
		"is_admin":     u.IsAdmin,
	}
	if u.Email != nil {
		m["email"] = *u.Email
	}
	if u.Phone != nil {
		m["phone"] = *u.Phone
	}
	if u.Avatar != "" {
		m["avatar"] = u.Avatar
	}
	return m
}
