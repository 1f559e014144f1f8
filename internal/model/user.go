package model

import "strings"

// User is the signed-in account as returned by the profile endpoint.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneCode      string `json:"phone_code"`
	PhoneNumber    string `json:"phone_number"`
	Company        string `json:"company"`
	WorkTitle      string `json:"work_title"`
	College        string `json:"college"`
	Major          string `json:"major"`
	GraduationYear *int   `json:"graduation_year"`

	// EmailConfirmedAt is nil until the address has been verified.
	EmailConfirmedAt *string `json:"email_confirmed_at"`
}

// FullName joins the first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Verified reports whether the user's email address has been confirmed.
func (u User) Verified() bool {
	return u.EmailConfirmedAt != nil && *u.EmailConfirmedAt != ""
}

// Registration is the body of a sign-up request.
type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	PhoneCode   string `json:"phone_code"`
	Password    string `json:"password"`
	Terms       bool   `json:"terms"`
	Privacy     bool   `json:"privacy"`
}

// ProfileUpdate is the body of a profile edit.
type ProfileUpdate struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	PhoneCode      string `json:"phone_code"`
	PhoneNumber    string `json:"phone_number"`
	Company        string `json:"company"`
	WorkTitle      string `json:"work_title"`
	College        string `json:"college"`
	Major          string `json:"major"`
	GraduationYear *int   `json:"graduation_year"`
}

// ProfileUpdateFrom copies the editable fields of u.
func ProfileUpdateFrom(u User) ProfileUpdate {
	return ProfileUpdate{
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Username:       u.Username,
		PhoneCode:      u.PhoneCode,
		PhoneNumber:    u.PhoneNumber,
		Company:        u.Company,
		WorkTitle:      u.WorkTitle,
		College:        u.College,
		Major:          u.Major,
		GraduationYear: u.GraduationYear,
	}
}

// PasswordChange is the body of a password change on the profile endpoint.
type PasswordChange struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PasswordReset is the body of a password reset completed with an OTP.
type PasswordReset struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
