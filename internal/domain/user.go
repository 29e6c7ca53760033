package domain

import "time"

// Roles disponibles para los usuarios.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name,omitempty"`
	Email           string    `json:"email"`
	Gender          string    `json:"gender,omitempty"`
	Role            string    `json:"role"`
	PasswordHash    string    `json:"-"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
