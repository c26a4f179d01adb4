package repository

import (
	"context"
	"database/sql"
	"errors"

	"classtime/core/database"
	"classtime/modules/booking/entity"
)

func (r *txRepository) LockTimeslot(ctx context.Context, timeslotID int64) (*entity.Timeslot, error) {
	var timeslot entity.Timeslot
	err := r.tx.GetContext(ctx, &timeslot, timeslotSelect+` WHERE t.timeslot_id = $1 FOR UPDATE OF t`, timeslotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &timeslot, nil
}

func (r *txRepository) GetStudentBookingForTimeslot(ctx context.Context, studentID, timeslotID int64) (*entity.Booking, error) {
	var booking entity.Booking
	query := `
		SELECT booking_id, student_id, timeslot_id, course_id, booking_date
		FROM booking WHERE student_id = $1 AND timeslot_id = $2
	`
	if err := r.tx.GetContext(ctx, &booking, query, studentID, timeslotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *txRepository) InsertBooking(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO booking (student_id, timeslot_id, course_id, booking_date)
		VALUES ($1, $2, $3, NOW())
		RETURNING booking_id, booking_date
	`
	return r.tx.QueryRowxContext(ctx, query, booking.StudentID, booking.TimeslotID, booking.CourseID).
		Scan(&booking.BookingID, &booking.BookingDate)
}

func (r *txRepository) SetTimeslotState(ctx context.Context, timeslotID int64, status, repeatability string) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE timeslot SET status = $2, repeatability = $3 WHERE timeslot_id = $1`,
		timeslotID, status, repeatability)
	return err
}

// LockPropagationCandidates locks the available timeslots of pattern from
// fromDate on, leaving out those the student cancelled. Rows locked by
// concurrent transactions are skipped.
func (r *txRepository) LockPropagationCandidates(ctx context.Context, pattern entity.Pattern, studentID, excludeTimeslotID int64, fromDate string) ([]entity.Timeslot, error) {
	query := timeslotSelect + ` WHERE ` + patternWhere + `
			AND t.status = 'available'
			AND bt.date >= $6::date
			AND t.timeslot_id <> $7
			AND NOT EXISTS (SELECT 1 FROM booking b WHERE b.timeslot_id = t.timeslot_id AND b.student_id = $8)
			AND NOT EXISTS (SELECT 1 FROM booking_cancellation bc WHERE bc.timeslot_id = t.timeslot_id AND bc.student_id = $8)
		ORDER BY bt.date, t.timeslot_id
		FOR UPDATE OF t SKIP LOCKED
	`
	args := append(patternArgs(pattern), fromDate, excludeTimeslotID, studentID)

	var rows []entity.Timeslot
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *txRepository) Savepoint(ctx context.Context, name string, fn func() error) error {
	return database.Savepoint(ctx, r.tx, name, fn)
}

func (r *txRepository) LockBooking(ctx context.Context, bookingID, studentID int64) (*entity.Booking, error) {
	var booking entity.Booking
	query := `
		SELECT booking_id, student_id, timeslot_id, course_id, booking_date
		FROM booking WHERE booking_id = $1 AND student_id = $2
		FOR UPDATE
	`
	if err := r.tx.GetContext(ctx, &booking, query, bookingID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *txRepository) DeleteBooking(ctx context.Context, bookingID int64) error {
	_, err := r.tx.ExecContext(ctx, `DELETE FROM booking WHERE booking_id = $1`, bookingID)
	return err
}

func (r *txRepository) RecordCancellation(ctx context.Context, studentID, timeslotID int64) error {
	query := `
		INSERT INTO booking_cancellation (student_id, timeslot_id, cancelled_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (student_id, timeslot_id) DO UPDATE SET cancelled_at = EXCLUDED.cancelled_at
	`
	_, err := r.tx.ExecContext(ctx, query, studentID, timeslotID)
	return err
}

func (r *txRepository) ClearCancellation(ctx context.Context, studentID, timeslotID int64) error {
	_, err := r.tx.ExecContext(ctx,
		`DELETE FROM booking_cancellation WHERE student_id = $1 AND timeslot_id = $2`,
		studentID, timeslotID)
	return err
}

func (r *txRepository) ListRecurringBookings(ctx context.Context, pattern entity.Pattern, studentID int64, fromDate string) ([]entity.RecurringBooking, error) {
	query := `
		SELECT b.booking_id, b.timeslot_id, to_char(bt.date, 'YYYY-MM-DD') AS date
		FROM booking b
		JOIN timeslot t ON t.timeslot_id = b.timeslot_id
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		WHERE ` + patternWhere + `
			AND b.student_id = $6
			AND t.repeatability = 'repeated'
			AND bt.date >= $7::date
		ORDER BY bt.date
		FOR UPDATE OF b, t
	`
	args := append(patternArgs(pattern), studentID, fromDate)

	var rows []entity.RecurringBooking
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPatternHolders returns students with a recurring booking of pattern
// dated fromDate or later, most senior first. Students who cancelled
// excludeTimeslotID are not holders for it.
func (r *txRepository) ListPatternHolders(ctx context.Context, pattern entity.Pattern, excludeTimeslotID int64, fromDate string) ([]entity.PatternHolder, error) {
	query := `
		SELECT b.student_id, s.nickname AS student_nickname, MIN(b.booking_id) AS first_booking_id
		FROM booking b
		JOIN timeslot t ON t.timeslot_id = b.timeslot_id
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		JOIN student s ON s.student_id = b.student_id
		WHERE ` + patternWhere + `
			AND t.repeatability = 'repeated'
			AND t.timeslot_id <> $6
			AND NOT EXISTS (
				SELECT 1 FROM booking_cancellation bc
				WHERE bc.student_id = b.student_id AND bc.timeslot_id = $6
			)
		GROUP BY b.student_id, s.nickname
		HAVING MAX(bt.date) >= $7::date
		ORDER BY first_booking_id
	`
	args := append(patternArgs(pattern), excludeTimeslotID, fromDate)

	var rows []entity.PatternHolder
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *txRepository) GetOrCreateBaseTimeslot(ctx context.Context, date string, dayOfWeek int, startTime, endTime string) (int64, error) {
	query := `
		INSERT INTO base_timeslot (date, day_of_week, start_time, end_time)
		VALUES ($1::date, $2, $3::time, $4::time)
		ON CONFLICT (date, start_time, end_time) DO UPDATE SET day_of_week = EXCLUDED.day_of_week
		RETURNING base_timeslot_id
	`
	var id int64
	err := r.tx.QueryRowxContext(ctx, query, date, dayOfWeek, startTime, endTime).Scan(&id)
	return id, err
}

func (r *txRepository) InsertTimeslot(ctx context.Context, timeslot *entity.Timeslot) error {
	query := `
		INSERT INTO timeslot (base_timeslot_id, tutor_id, course_id, status, repeatability, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING timeslot_id
	`
	return r.tx.QueryRowxContext(ctx, query,
		timeslot.BaseTimeslotID, timeslot.TutorID, timeslot.CourseID, timeslot.Status, timeslot.Repeatability,
	).Scan(&timeslot.TimeslotID)
}
