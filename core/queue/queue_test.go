package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	got []AutoBookingNotice
}

func (h *recordingHandler) HandleAutoBookingNotice(_ context.Context, n AutoBookingNotice) error {
	h.got = append(h.got, n)
	return nil
}

func TestAutoBookingNoticeTask(t *testing.T) {
	notice := AutoBookingNotice{StudentID: 3, BookingID: 9, TimeslotID: 12, Date: "2025-10-20", StartTime: "10:00:00"}

	task, err := NewAutoBookingNoticeTask(notice)
	require.NoError(t, err)
	assert.Equal(t, TypeAutoBookingNotice, task.Type())

	got, err := ParseAutoBookingNotice(task)
	require.NoError(t, err)
	assert.Equal(t, notice, got)
}

func TestParseRejectsBadPayload(t *testing.T) {
	_, err := ParseAutoBookingNotice(asynq.NewTask(TypeAutoBookingNotice, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestInlineEnqueuer(t *testing.T) {
	h := &recordingHandler{}
	q := InlineEnqueuer{Handler: h}

	require.NoError(t, q.EnqueueAutoBookingNotice(context.Background(), AutoBookingNotice{StudentID: 1}))
	require.Len(t, h.got, 1)
	assert.EqualValues(t, 1, h.got[0].StudentID)
}
