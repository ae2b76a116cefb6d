// models/user.go
package models

// UserProfile is the logged-in user's profile as served by the marketplace API.
type UserProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	FCMToken    string `json:"fcmToken,omitempty"`
	Role        string `json:"role,omitempty"`
}
