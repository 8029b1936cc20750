package identity

import "time"

// User is a registered account together with its profile record.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string
	PasswordHash string `json:"-"`
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a User that may leave the service.
type PublicUser struct {
	ID          string
	Email       string
	PhoneNumber string
	FullName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Public strips credential material from the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
