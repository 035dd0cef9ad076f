package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomBook/internal/infra/ports/http/dto"
)

func TestRequestValidator_UsesJSONNames(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&dto.CreateBookingRequest{Purpose: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room_id is required")
	assert.Contains(t, err.Error(), "start is required")

	err = v.Validate(&dto.CreateBookingRequest{
		RoomID: "room-1",
		Preset: &dto.PresetRequest{Date: "02/03/2026", Kind: "morning"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date must look like 2006-01-02")

	assert.NoError(t, v.Validate(&dto.CreateBookingRequest{
		RoomID: "room-1",
		Preset: &dto.PresetRequest{Date: "2026-03-02", Kind: "full_day"},
	}))
}
