package domain

// ReservationRequest is form-local state; it is never persisted or sent anywhere.
type ReservationRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
	Guests   int    `json:"guests" validate:"required,min=1,max=10"`
	Message  string `json:"message,omitempty"`
}
