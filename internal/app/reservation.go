package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/domain"
)

const (
	ReservationSuccessMessage = "Reservation request submitted successfully! We'll contact you soon."
	ReservationClosedMessage  = "This residence is no longer available for reservation."
	MinGuests                 = 1
	MaxGuests                 = 10
)

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewReservationForm returns the empty form a visitor starts from.
func NewReservationForm() domain.ReservationRequest {
	return domain.ReservationRequest{Guests: MinGuests}
}

type GuestOption struct {
	Value int
	Label string
}

// GuestOptions is the fixed choice list for the guest count.
func GuestOptions() []GuestOption {
	out := make([]GuestOption, 0, MaxGuests)
	for n := MinGuests; n <= MaxGuests; n++ {
		label := fmt.Sprintf("%d Guests", n)
		if n == 1 {
			label = "1 Guest"
		}
		out = append(out, GuestOption{Value: n, Label: label})
	}
	return out
}

// ConstraintError lists form fields the input layer would have refused.
type ConstraintError struct {
	Fields []string
}

func (e *ConstraintError) Error() string {
	return "reservation form incomplete: " + strings.Join(e.Fields, ", ")
}

type ReservationService struct {
	newID func() string
}

func NewReservationService() *ReservationService {
	return &ReservationService{newID: uuid.NewString}
}

type Receipt struct {
	RequestID string `json:"requestId"`
	Notice    Notice `json:"notice"`
}

// Submit simulates a reservation request. Nothing leaves the process: the
// request is neither stored nor forwarded, and no field value is logged.
// Only the input-layer constraints (required fields, email shape, guest
// range) can reject it; check-in/check-out ordering is not checked.
func (s *ReservationService) Submit(ctx context.Context, residenceID string, req domain.ReservationRequest) (Receipt, domain.ReservationRequest, error) {
	if err := formValidate.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ce := &ConstraintError{}
			for _, fe := range verrs {
				ce.Fields = append(ce.Fields, fe.Field())
			}
			return Receipt{}, req, ce
		}
		return Receipt{}, req, err
	}

	id := s.newID()
	observability.ObserveReservation()
	log.Info().Str("request_id", id).Str("residence", residenceID).Msg("reservation request simulated")

	return Receipt{
		RequestID: id,
		Notice:    Notice{Level: NoticeSuccess, Message: ReservationSuccessMessage},
	}, NewReservationForm(), nil
}
