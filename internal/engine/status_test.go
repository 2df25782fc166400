package engine

import (
	"testing"
	"time"

	"ezschedule/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		startsAt time.Time
		endsAt   time.Time
		isClosed bool
		want     Status
	}{
		{
			name:     "окно ещё не началось",
			startsAt: now.Add(time.Hour),
			endsAt:   now.Add(2 * time.Hour),
			want:     StatusInactive,
		},
		{
			name:     "окно открыто",
			startsAt: now.Add(-time.Hour),
			endsAt:   now.Add(time.Hour),
			want:     StatusActive,
		},
		{
			name:     "окно истекло",
			startsAt: now.Add(-2 * time.Hour),
			endsAt:   now.Add(-time.Hour),
			want:     StatusClosed,
		},
		{
			name:     "момент окончания уже закрыт",
			startsAt: now.Add(-time.Hour),
			endsAt:   now,
			want:     StatusClosed,
		},
		{
			name:     "момент начала уже активен",
			startsAt: now,
			endsAt:   now.Add(time.Hour),
			want:     StatusActive,
		},
		{
			name:     "флаг закрытия сильнее открытого окна",
			startsAt: now.Add(-time.Hour),
			endsAt:   now.Add(time.Hour),
			isClosed: true,
			want:     StatusClosed,
		},
		{
			name:     "флаг закрытия сильнее будущего окна",
			startsAt: now.Add(time.Hour),
			endsAt:   now.Add(2 * time.Hour),
			isClosed: true,
			want:     StatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := models.Slot{
				StartsAt: tt.startsAt,
				EndsAt:   tt.endsAt,
				IsClosed: tt.isClosed,
			}
			assert.Equal(t, tt.want, ResolveStatus(slot, now), "Неверный производный статус слота")
		})
	}
}
