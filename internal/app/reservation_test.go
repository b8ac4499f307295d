package app_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxe_residences/internal/app"
	"luxe_residences/internal/domain"
)

func validRequest() domain.ReservationRequest {
	return domain.ReservationRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "+44 20 7946 0000",
		CheckIn:  "2026-12-20",
		CheckOut: "2026-12-27",
		Guests:   4,
		Message:  "Late arrival",
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestSubmit_SuccessResetsForm(t *testing.T) {
	logs := captureLogs(t)
	svc := app.NewReservationService()
	req := validRequest()

	receipt, form, err := svc.Submit(context.Background(), "villa-azure", req)

	require.NoError(t, err)
	assert.Equal(t, app.NoticeSuccess, receipt.Notice.Level)
	assert.Equal(t, app.ReservationSuccessMessage, receipt.Notice.Message)
	assert.NotEmpty(t, receipt.RequestID)
	assert.Equal(t, app.NewReservationForm(), form)

	// nothing the visitor typed shows up anywhere observable
	out := logs.String()
	for _, v := range []string{req.Name, req.Email, req.Phone, req.CheckIn, req.CheckOut, req.Message} {
		assert.NotContains(t, out, v)
	}
}

func TestSubmit_NoCrossFieldValidation(t *testing.T) {
	req := validRequest()
	req.CheckIn, req.CheckOut = "2026-12-27", "2026-12-20"
	req.Message = ""

	_, _, err := app.NewReservationService().Submit(context.Background(), "x", req)
	assert.NoError(t, err)
}

func TestSubmit_InputConstraints(t *testing.T) {
	_, form, err := app.NewReservationService().Submit(context.Background(), "x", domain.ReservationRequest{Email: "not-an-email", Guests: 11})

	var ce *app.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.ElementsMatch(t, []string{"name", "email", "phone", "checkIn", "checkOut", "guests"}, ce.Fields)
	assert.Equal(t, "not-an-email", form.Email, "rejected form keeps its values")
}

func TestNewReservationForm_Defaults(t *testing.T) {
	f := app.NewReservationForm()
	assert.Equal(t, domain.ReservationRequest{Guests: 1}, f)
}

func TestGuestOptions(t *testing.T) {
	opts := app.GuestOptions()
	require.Len(t, opts, 10)
	assert.Equal(t, app.GuestOption{Value: 1, Label: "1 Guest"}, opts[0])
	assert.Equal(t, app.GuestOption{Value: 10, Label: "10 Guests"}, opts[9])
}
