package model

// Contact is an address book entry owned by the signed-in user.
type Contact struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneCode   string `json:"phone_code"`
	PhoneNumber string `json:"phone_number"`
	Company     string `json:"company"`
	WorkTitle   string `json:"work_title"`
	College     string `json:"college"`
	Major       string `json:"major"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ContactInput is the body of a contact create or update.
type ContactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneCode   string `json:"phone_code"`
	PhoneNumber string `json:"phone_number"`
	Company     string `json:"company"`
	WorkTitle   string `json:"work_title"`
	College     string `json:"college"`
	Major       string `json:"major"`
}

// ContactInputFrom copies the editable fields of c.
func ContactInputFrom(c Contact) ContactInput {
	return ContactInput{
		Name:        c.Name,
		Email:       c.Email,
		PhoneCode:   c.PhoneCode,
		PhoneNumber: c.PhoneNumber,
		Company:     c.Company,
		WorkTitle:   c.WorkTitle,
		College:     c.College,
		Major:       c.Major,
	}
}
