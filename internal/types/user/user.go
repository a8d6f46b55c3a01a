package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClerkID     string    `json:"clerk_id" db:"clerk_id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateUserRequest struct {
	ClerkID     string `json:"clerk_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Preferences controls which nudge channels a user receives. NotifChannel
// is "push", "whatsapp" or "both".
type Preferences struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	UserID                uuid.UUID `json:"user_id" db:"user_id"`
	NudgeEnabled          bool      `json:"nudge_enabled" db:"nudge_enabled"`
	MicrochallengeEnabled bool      `json:"microchallenge_enabled" db:"microchallenge_enabled"`
	NotifChannel          string    `json:"notif_channel" db:"notif_channel"`
	WhatsappNumber        string    `json:"whatsapp_number" db:"whatsapp_number"`
	WhatsappVerified      bool      `json:"whatsapp_verified" db:"whatsapp_verified"`
}

type UpdatePreferencesRequest struct {
	NudgeEnabled          *bool   `json:"nudge_enabled,omitempty"`
	MicrochallengeEnabled *bool   `json:"microchallenge_enabled,omitempty"`
	NotifChannel          *string `json:"notif_channel,omitempty"`
	WhatsappNumber        *string `json:"whatsapp_number,omitempty"`
	WhatsappVerified      *bool   `json:"whatsapp_verified,omitempty"`
}
