package models

import "time"

// Account represents a back office login.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"` // lower-cased, unique
	PasswordHash string    `json:"-" bson:"passwordHash"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// AccountSummary is the public view of an account returned on login.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary strips everything but the public identity fields.
func (a Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Username: a.Username, Email: a.Email}
}
