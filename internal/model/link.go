package model

import "strings"

// Service identifies the provider behind a linked mail account.
type Service string

const (
	ServiceGoogle    Service = "google"
	ServiceMicrosoft Service = "microsoft"
	ServiceManual    Service = "manual"
)

// LinkedAccount is an OAuth-connected (or manually configured) mail
// account. It is the "from" identity for sending and the inbox source key.
type LinkedAccount struct {
	ID        int     `json:"id"`
	Service   Service `json:"service"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}

// DisplayName returns "First Last <email>", or the bare email when no
// name is on record.
func (a LinkedAccount) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name + " <" + a.Email + ">"
}
