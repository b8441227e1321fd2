package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/core/model"
)

func TestErrorSentinels(t *testing.T) {
	cause := errors.New("broker down")
	failed := fmt.Errorf("wrapped: %w", &ActionFailed{Action: model.ActionAlert, Reason: ReasonBackendUnavailable, Err: cause})
	require.ErrorIs(t, failed, ErrBackendUnavailable)
	require.ErrorIs(t, failed, cause)
	require.NotErrorIs(t, failed, ErrTargetNotFound)

	inv := &InvalidTransition{Action: model.ActionDispatch, AmbulanceID: "AMB-002", From: model.StatusOnCall, To: model.StatusOnCall}
	require.ErrorIs(t, inv, ErrInvalidTransition)
	require.Equal(t, "invalid_transition", reasonOf(inv))
	require.Equal(t, "slot_busy", reasonOf(&ActionRejected{Reason: ReasonSlotBusy}))
	require.Equal(t, "", reasonOf(nil))
}
