package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/testutil"
	"paceline.app/community/pkg/apperror"
)

func TestCheckRegistration(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := func(mutate func(ev *entity.Event)) *entity.Event {
		ev := &entity.Event{IsActive: true, MaxParticipants: testutil.Ptr(2)}
		if mutate != nil {
			mutate(ev)
		}
		return ev
	}

	tests := []struct {
		name       string
		ev         *entity.Event
		already    bool
		registered int64
		want       error
	}{
		{name: "missing", ev: nil, want: apperror.ErrNotFound},
		{name: "inactive", ev: open(func(ev *entity.Event) { ev.IsActive = false }), want: apperror.ErrNotFound},
		{name: "closed", ev: open(func(ev *entity.Event) { ev.RegistrationClosesAt = &past }), want: apperror.ErrRegistrationClosed},
		{name: "not yet open", ev: open(func(ev *entity.Event) { ev.RegistrationOpensAt = &future }), want: apperror.ErrRegistrationNotOpen},
		{
			name: "closed wins over not open",
			ev: open(func(ev *entity.Event) {
				ev.RegistrationOpensAt = &future
				ev.RegistrationClosesAt = &past
			}),
			want: apperror.ErrRegistrationClosed,
		},
		{name: "full", ev: open(nil), registered: 2, want: apperror.ErrEventFull},
		{name: "already registered on a full event", ev: open(nil), already: true, registered: 2},
		{name: "window open", ev: open(func(ev *entity.Event) { ev.RegistrationOpensAt = &past; ev.RegistrationClosesAt = &future })},
		{name: "no limit", ev: open(func(ev *entity.Event) { ev.MaxParticipants = nil }), registered: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRegistration(tt.ev, tt.already, tt.registered, now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
