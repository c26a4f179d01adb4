package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"classtime/core/errors"
	"classtime/modules/booking/dto"
	"classtime/modules/booking/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	caller int64 = 7
	other  int64 = 8
)

// Timeslots 1..5 share the Wednesday 10:00 math pattern; 1 is in the past.
// Timeslot 6 is the same day at noon.
func setup(t *testing.T) (*BookingService, *fakeRepo, *recordingEnqueuer) {
	t.Helper()
	repo := newFakeRepo()
	repo.addTimeslot(1, "2025-03-05")
	repo.addTimeslot(2, "2025-03-12")
	repo.addTimeslot(3, "2025-03-19")
	repo.addTimeslot(4, "2025-03-26")
	repo.addTimeslot(5, "2025-04-02")
	repo.addTimeslot(6, "2025-03-19", func(ts *entity.Timeslot) {
		ts.StartTime = "12:00:00"
		ts.EndTime = "13:00:00"
	})

	enqueuer := &recordingEnqueuer{}
	svc := NewBookingService(repo, enqueuer, time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC) }
	return svc, repo, enqueuer
}

func requireCode(t *testing.T, appErr *errors.AppError, code errors.ErrorCode, message string) {
	t.Helper()
	require.NotNil(t, appErr)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestBookSingle(t *testing.T) {
	svc, repo, _ := setup(t)

	resp, appErr := svc.Book(context.Background(), caller, &dto.BookRequest{TimeslotID: 3})
	require.Nil(t, appErr)
	assert.NotZero(t, resp.BookingID)
	assert.Equal(t, "Booking confirmed", resp.Message)
	assert.Empty(t, resp.ExistingBookings)

	ts := repo.timeslot(3)
	assert.Equal(t, "booked", ts.Status)
	assert.Equal(t, "single", ts.Repeatability)
	assert.Equal(t, "available", repo.timeslot(4).Status)
}

func TestBookErrors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, appErr := svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 999})
	requireCode(t, appErr, errors.ErrNotFound, "Timeslot not found")

	_, appErr = svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 3})
	require.Nil(t, appErr)

	_, appErr = svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 3})
	requireCode(t, appErr, errors.ErrConflict, "You already have a booking for this timeslot")

	_, appErr = svc.Book(ctx, other, &dto.BookRequest{TimeslotID: 3})
	requireCode(t, appErr, errors.ErrConflict, "Timeslot is no longer available")

	_, appErr = svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 1})
	requireCode(t, appErr, errors.ErrInvalidInput, "Cannot book a timeslot in the past")
}

func TestBookRecurringPropagates(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.addBooking(50, other, 4, "single")

	resp, appErr := svc.Book(context.Background(), caller, &dto.BookRequest{TimeslotID: 2, Recurring: true})
	require.Nil(t, appErr)

	assert.Equal(t, 2, resp.ExistingCount)
	require.Len(t, resp.ExistingBookings, 2)
	assert.Equal(t, int64(3), resp.ExistingBookings[0].TimeslotID)
	assert.Equal(t, "2025-03-19", resp.ExistingBookings[0].Date)
	assert.Equal(t, int64(5), resp.ExistingBookings[1].TimeslotID)
	assert.Contains(t, resp.Message, "2 more matching timeslots")

	for _, id := range []int64{2, 3, 5} {
		ts := repo.timeslot(id)
		assert.Equal(t, "booked", ts.Status, "timeslot %d", id)
		assert.Equal(t, "repeated", ts.Repeatability, "timeslot %d", id)
		assert.Equal(t, caller, repo.bookingOf(id).StudentID)
	}
	assert.Equal(t, other, repo.bookingOf(4).StudentID)
	assert.Equal(t, "available", repo.timeslot(1).Status)
	assert.Equal(t, "available", repo.timeslot(6).Status)
}

func TestBookRecurringToleratesFailingCandidate(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.failInsertFor[4] = true

	resp, appErr := svc.Book(context.Background(), caller, &dto.BookRequest{TimeslotID: 2, Recurring: true})
	require.Nil(t, appErr)

	assert.Equal(t, 2, resp.ExistingCount)
	assert.Equal(t, "booked", repo.timeslot(2).Status)
	assert.Equal(t, "booked", repo.timeslot(3).Status)
	assert.Equal(t, "booked", repo.timeslot(5).Status)

	failed := repo.timeslot(4)
	assert.Equal(t, "available", failed.Status)
	assert.Equal(t, "single", failed.Repeatability)
	assert.Nil(t, repo.bookingOf(4))
}

func TestBookRecurringWithoutCandidates(t *testing.T) {
	svc, repo, _ := setup(t)
	for _, id := range []int64{3, 4, 5} {
		repo.addBooking(40+id, other, id, "single")
	}

	resp, appErr := svc.Book(context.Background(), caller, &dto.BookRequest{TimeslotID: 2, Recurring: true})
	require.Nil(t, appErr)
	assert.Zero(t, resp.ExistingCount)
	assert.NotNil(t, resp.ExistingBookings)
	assert.Equal(t, "repeated", repo.timeslot(2).Repeatability)
}

func TestAutoBookExistingIsIdempotent(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	_, appErr := svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 2, Recurring: true})
	require.Nil(t, appErr)

	repo.addTimeslot(9, "2025-04-09")

	resp, appErr := svc.AutoBookExisting(ctx, caller, 2)
	require.Nil(t, appErr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, int64(9), resp.AutoBookings[0].TimeslotID)

	resp, appErr = svc.AutoBookExisting(ctx, caller, 2)
	require.Nil(t, appErr)
	assert.Zero(t, resp.Count)
	assert.Equal(t, "No new matching timeslots to book", resp.Message)
}

func TestAutoBookExistingGuards(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	resp, appErr := svc.AutoBookExisting(ctx, caller, 6)
	require.Nil(t, appErr)
	assert.Empty(t, resp.AutoBookings)
	assert.Equal(t, "Not a recurring booking or timeslot not found", resp.Message)

	resp, appErr = svc.AutoBookExisting(ctx, caller, 999)
	require.Nil(t, appErr)
	assert.Equal(t, "Not a recurring booking or timeslot not found", resp.Message)

	repo.addBooking(50, caller, 2, "repeated")
	_, appErr = svc.AutoBookExisting(ctx, other, 2)
	requireCode(t, appErr, errors.ErrForbidden, "")
	assert.Equal(t, "available", repo.timeslot(3).Status)
}

func TestCancel(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	repo.addBooking(50, caller, 3, "repeated")

	_, appErr := svc.Cancel(ctx, other, 50)
	requireCode(t, appErr, errors.ErrNotFound, "Booking not found")

	resp, appErr := svc.Cancel(ctx, caller, 50)
	require.Nil(t, appErr)
	assert.Equal(t, int64(3), resp.TimeslotID)

	ts := repo.timeslot(3)
	assert.Equal(t, "available", ts.Status)
	assert.Equal(t, "single", ts.Repeatability)
	assert.Nil(t, repo.bookingOf(3))
}

func TestCancelRecurring(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	repo.addBooking(50, caller, 1, "repeated")
	repo.addBooking(51, caller, 2, "repeated")
	repo.addBooking(52, caller, 3, "repeated")
	repo.addBooking(53, other, 4, "repeated")

	resp, appErr := svc.CancelRecurring(ctx, caller, 3)
	require.Nil(t, appErr)
	assert.Equal(t, 2, resp.CancelledCount)
	assert.Equal(t, []string{"2025-03-12", "2025-03-19"}, resp.CancelledDates)

	assert.Equal(t, "booked", repo.timeslot(1).Status)
	assert.Equal(t, "available", repo.timeslot(2).Status)
	assert.Equal(t, "available", repo.timeslot(3).Status)
	assert.Equal(t, other, repo.bookingOf(4).StudentID)
}

func TestCancelRecurringErrors(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	repo.addBooking(53, other, 4, "repeated")

	_, appErr := svc.CancelRecurring(ctx, caller, 999)
	requireCode(t, appErr, errors.ErrNotFound, "Timeslot not found")

	_, appErr = svc.CancelRecurring(ctx, caller, 6)
	requireCode(t, appErr, errors.ErrInvalidInput, "This is not a recurring booking")

	_, appErr = svc.CancelRecurring(ctx, caller, 4)
	requireCode(t, appErr, errors.ErrNotFound, "No recurring bookings found")
	assert.Equal(t, "booked", repo.timeslot(4).Status)
}

func TestAutoBookRecurringSeniorHolderWins(t *testing.T) {
	svc, repo, enqueuer := setup(t)
	repo.nicknames[other] = "boris"
	repo.addBooking(20, other, 3, "repeated")
	repo.addBooking(30, caller, 4, "repeated")

	resp, appErr := svc.AutoBookRecurring(context.Background(), 5)
	require.Nil(t, appErr)

	require.Equal(t, 1, resp.Count)
	assert.Equal(t, other, resp.AutoBookings[0].StudentID)
	require.NotNil(t, resp.AutoBookings[0].StudentNickname)
	assert.Equal(t, "boris", *resp.AutoBookings[0].StudentNickname)
	assert.Equal(t, []int64{caller}, resp.SkippedStudents)
	assert.Equal(t, "Automatic bookings created for 1 students", resp.Message)

	ts := repo.timeslot(5)
	assert.Equal(t, "booked", ts.Status)
	assert.Equal(t, "repeated", ts.Repeatability)

	require.Len(t, enqueuer.notices, 1)
	notice := enqueuer.notices[0]
	assert.Equal(t, other, notice.StudentID)
	assert.Equal(t, "Anna Ivanova", notice.TutorName)
	assert.Equal(t, "2025-04-02", notice.Date)
}

func TestAutoBookRecurringIgnoresLapsedSeries(t *testing.T) {
	svc, repo, enqueuer := setup(t)
	repo.addBooking(10, other, 1, "repeated")

	resp, appErr := svc.AutoBookRecurring(context.Background(), 5)
	require.Nil(t, appErr)
	assert.Zero(t, resp.Count)
	assert.Equal(t, "No matching recurring bookings found", resp.Message)
	assert.Empty(t, enqueuer.notices)
	assert.Equal(t, "available", repo.timeslot(5).Status)
}

func TestAutoBookRecurringErrors(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.addBooking(20, other, 3, "repeated")

	_, appErr := svc.AutoBookRecurring(context.Background(), 999)
	requireCode(t, appErr, errors.ErrNotFound, "")

	_, appErr = svc.AutoBookRecurring(context.Background(), 3)
	requireCode(t, appErr, errors.ErrConflict, "")
}

func TestCreateTimeslotAutoBooks(t *testing.T) {
	svc, repo, enqueuer := setup(t)
	repo.teaches[[2]int64{1, 1}] = true
	repo.addBooking(20, other, 3, "repeated")

	resp, appErr := svc.CreateTimeslot(context.Background(), &dto.CreateTimeslotRequest{
		TutorID: 1, CourseID: 1, Date: "2025-04-16", StartTime: "10:00", EndTime: "11:00",
	})
	require.Nil(t, appErr)
	assert.Equal(t, 3, resp.Timeslot.DayOfWeek)
	assert.Equal(t, "10:00:00", resp.Timeslot.StartTime)
	assert.Equal(t, "booked", resp.Timeslot.Status)
	require.NotNil(t, resp.AutoBooking)
	assert.Equal(t, 1, resp.AutoBooking.Count)
	assert.Len(t, enqueuer.notices, 1)
}

func TestCreateTimeslotValidation(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.teaches[[2]int64{1, 1}] = true
	ctx := context.Background()

	_, appErr := svc.CreateTimeslot(ctx, &dto.CreateTimeslotRequest{TutorID: 1, CourseID: 1, Date: "2025-04-16", StartTime: "11:00", EndTime: "10:00"})
	requireCode(t, appErr, errors.ErrInvalidInput, "End time must be after start time")

	_, appErr = svc.CreateTimeslot(ctx, &dto.CreateTimeslotRequest{TutorID: 1, CourseID: 1, Date: "2025-03-01", StartTime: "10:00", EndTime: "11:00"})
	requireCode(t, appErr, errors.ErrInvalidInput, "Cannot create a timeslot in the past")

	_, appErr = svc.CreateTimeslot(ctx, &dto.CreateTimeslotRequest{TutorID: 1, CourseID: 2, Date: "2025-04-16", StartTime: "10:00", EndTime: "11:00"})
	requireCode(t, appErr, errors.ErrInvalidInput, "Tutor does not teach this course")
}

func TestSweepRecurring(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.addBooking(20, caller, 3, "repeated")

	resp, appErr := svc.SweepRecurring(context.Background())
	require.Nil(t, appErr)
	assert.Equal(t, 3, resp.Checked)
	assert.Equal(t, 3, resp.Booked)
	assert.Equal(t, caller, repo.bookingOf(5).StudentID)
	assert.Equal(t, "available", repo.timeslot(6).Status)
	assert.Equal(t, "available", repo.timeslot(1).Status)

	resp, appErr = svc.SweepRecurring(context.Background())
	require.Nil(t, appErr)
	assert.Zero(t, resp.Booked)
}

func TestCancelledOccurrenceIsNotRebooked(t *testing.T) {
	svc, repo, enqueuer := setup(t)
	ctx := context.Background()

	_, appErr := svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 2, Recurring: true})
	require.Nil(t, appErr)
	cancelled := repo.bookingOf(4)
	require.NotNil(t, cancelled)

	_, appErr = svc.Cancel(ctx, caller, cancelled.BookingID)
	require.Nil(t, appErr)

	resp, appErr := svc.SweepRecurring(ctx)
	require.Nil(t, appErr)
	assert.Zero(t, resp.Booked)
	assert.Equal(t, "available", repo.timeslot(4).Status)
	assert.Nil(t, repo.bookingOf(4))
	assert.Empty(t, enqueuer.notices)

	auto, appErr := svc.AutoBookRecurring(ctx, 4)
	require.Nil(t, appErr)
	assert.Zero(t, auto.Count)

	existing, appErr := svc.AutoBookExisting(ctx, caller, 2)
	require.Nil(t, appErr)
	assert.Zero(t, existing.Count)
	assert.Nil(t, repo.bookingOf(4))
}

func TestCancelledOccurrenceGoesToOtherHolder(t *testing.T) {
	svc, repo, enqueuer := setup(t)
	ctx := context.Background()
	repo.addBooking(20, caller, 3, "repeated")
	repo.addBooking(21, caller, 4, "repeated")
	repo.addBooking(30, other, 5, "repeated")

	_, appErr := svc.Cancel(ctx, caller, 21)
	require.Nil(t, appErr)

	resp, appErr := svc.AutoBookRecurring(ctx, 4)
	require.Nil(t, appErr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, other, resp.AutoBookings[0].StudentID)
	assert.Equal(t, other, repo.bookingOf(4).StudentID)
	require.Len(t, enqueuer.notices, 1)
	assert.Equal(t, other, enqueuer.notices[0].StudentID)
}

func TestExplicitRebookClearsCancellation(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	repo.addBooking(20, caller, 3, "repeated")
	repo.addBooking(21, caller, 4, "repeated")

	_, appErr := svc.Cancel(ctx, caller, 21)
	require.Nil(t, appErr)
	require.True(t, repo.state.cancelled[[2]int64{caller, 4}])

	_, appErr = svc.Book(ctx, caller, &dto.BookRequest{TimeslotID: 4})
	require.Nil(t, appErr)
	assert.False(t, repo.state.cancelled[[2]int64{caller, 4}])
}

func TestGetMyBookings(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.addBooking(50, caller, 4, "single")
	repo.addBooking(51, caller, 2, "single")
	repo.addBooking(52, other, 3, "single")

	resp, appErr := svc.GetMyBookings(context.Background(), caller)
	require.Nil(t, appErr)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "2025-03-12", resp.Bookings[0].Date)
}

func TestExportICal(t *testing.T) {
	svc, repo, _ := setup(t)
	repo.addBooking(50, caller, 3, "repeated")

	data, filename, appErr := svc.ExportICal(context.Background(), caller, "Ann Lee")
	require.Nil(t, appErr)
	assert.Equal(t, "classtime-ann-lee.ics", filename)

	body := string(data)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "UID:booking-50@classtime")
	assert.Contains(t, body, "SUMMARY:Math with Anna Ivanova")
	assert.Contains(t, body, "DTSTART:20250319T100000Z")

	_, filename, appErr = svc.ExportICal(context.Background(), other, "")
	require.Nil(t, appErr)
	assert.Equal(t, "classtime-bookings.ics", filename)
}
