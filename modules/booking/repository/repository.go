package repository

import (
	"context"

	"classtime/core/database"
	"classtime/modules/booking/entity"

	"github.com/jmoiron/sqlx"
)

type BookingRepositoryInterface interface {
	// WithTx runs fn in one transaction; fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error

	GetMyBookings(ctx context.Context, studentID int64) ([]entity.BookingDetail, error)
	GetTimeslot(ctx context.Context, timeslotID int64) (*entity.Timeslot, error)
	ListSweepCandidates(ctx context.Context, fromDate string) ([]int64, error)
	TutorTeachesCourse(ctx context.Context, tutorID, courseID int64) (bool, error)
}

// TxRepository holds the statements that must share a transaction.
type TxRepository interface {
	LockTimeslot(ctx context.Context, timeslotID int64) (*entity.Timeslot, error)
	GetStudentBookingForTimeslot(ctx context.Context, studentID, timeslotID int64) (*entity.Booking, error)
	InsertBooking(ctx context.Context, booking *entity.Booking) error
	SetTimeslotState(ctx context.Context, timeslotID int64, status, repeatability string) error
	LockPropagationCandidates(ctx context.Context, pattern entity.Pattern, studentID, excludeTimeslotID int64, fromDate string) ([]entity.Timeslot, error)
	Savepoint(ctx context.Context, name string, fn func() error) error

	LockBooking(ctx context.Context, bookingID, studentID int64) (*entity.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
	// RecordCancellation keeps recurring auto-booking from handing the
	// timeslot back to the student who cancelled it.
	RecordCancellation(ctx context.Context, studentID, timeslotID int64) error
	ClearCancellation(ctx context.Context, studentID, timeslotID int64) error
	ListRecurringBookings(ctx context.Context, pattern entity.Pattern, studentID int64, fromDate string) ([]entity.RecurringBooking, error)

	ListPatternHolders(ctx context.Context, pattern entity.Pattern, excludeTimeslotID int64, fromDate string) ([]entity.PatternHolder, error)
	GetOrCreateBaseTimeslot(ctx context.Context, date string, dayOfWeek int, startTime, endTime string) (int64, error)
	InsertTimeslot(ctx context.Context, timeslot *entity.Timeslot) error
}

type BookingRepository struct {
	DB database.IDatabase
}

func NewBookingRepository(db database.IDatabase) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return database.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx *sqlx.Tx
}

const timeslotSelect = `
	SELECT t.timeslot_id, t.base_timeslot_id, t.tutor_id, t.course_id, t.status, t.repeatability,
		to_char(bt.date, 'YYYY-MM-DD') AS date, bt.day_of_week,
		to_char(bt.start_time, 'HH24:MI:SS') AS start_time,
		to_char(bt.end_time, 'HH24:MI:SS') AS end_time,
		tu.name AS tutor_name, tu.surname AS tutor_surname, c.course_name
	FROM timeslot t
	JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
	JOIN tutor tu ON tu.tutor_id = t.tutor_id
	JOIN course c ON c.course_id = t.course_id
`

// patternWhere matches timeslot t / base_timeslot bt against $1..$5.
const patternWhere = `
	t.tutor_id = $1 AND t.course_id = $2 AND bt.day_of_week = $3
	AND bt.start_time = $4::time AND bt.end_time = $5::time
`

func patternArgs(p entity.Pattern) []any {
	return []any{p.TutorID, p.CourseID, p.DayOfWeek, p.StartTime, p.EndTime}
}
