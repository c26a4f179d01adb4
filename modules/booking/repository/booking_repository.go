package repository

import (
	"context"
	"database/sql"
	"errors"

	"classtime/core/logger"
	"classtime/modules/booking/entity"
)

func (r *BookingRepository) GetMyBookings(ctx context.Context, studentID int64) ([]entity.BookingDetail, error) {
	query := `
		SELECT b.booking_id, b.booking_date, t.timeslot_id,
			tu.tutor_id, tu.name AS tutor_name, tu.surname AS tutor_surname, tu.photo_link,
			c.course_name,
			to_char(bt.date, 'YYYY-MM-DD') AS date,
			to_char(bt.start_time, 'HH24:MI:SS') AS start_time,
			to_char(bt.end_time, 'HH24:MI:SS') AS end_time,
			t.repeatability
		FROM booking b
		JOIN timeslot t ON t.timeslot_id = b.timeslot_id
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		JOIN tutor tu ON tu.tutor_id = t.tutor_id
		JOIN course c ON c.course_id = b.course_id
		WHERE b.student_id = $1
		ORDER BY bt.date, bt.start_time
	`
	var rows []entity.BookingDetail
	if err := r.DB.SelectContext(ctx, &rows, query, studentID); err != nil {
		logger.Error("BookingRepository:GetMyBookings:Error", "error", err, "student_id", studentID)
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepository) GetTimeslot(ctx context.Context, timeslotID int64) (*entity.Timeslot, error) {
	var timeslot entity.Timeslot
	err := r.DB.GetContext(ctx, &timeslot, timeslotSelect+` WHERE t.timeslot_id = $1`, timeslotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("BookingRepository:GetTimeslot:Error", "error", err, "timeslot_id", timeslotID)
		return nil, err
	}
	return &timeslot, nil
}

// ListSweepCandidates returns available timeslots from fromDate on whose
// pattern has at least one current recurring booking by a student who has not
// cancelled that timeslot.
func (r *BookingRepository) ListSweepCandidates(ctx context.Context, fromDate string) ([]int64, error) {
	query := `
		SELECT t.timeslot_id
		FROM timeslot t
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		WHERE t.status = 'available' AND bt.date >= $1::date
			AND EXISTS (
				SELECT 1
				FROM booking b2
				JOIN timeslot t2 ON t2.timeslot_id = b2.timeslot_id
				JOIN base_timeslot bt2 ON bt2.base_timeslot_id = t2.base_timeslot_id
				WHERE t2.repeatability = 'repeated'
					AND t2.timeslot_id <> t.timeslot_id
					AND t2.tutor_id = t.tutor_id AND t2.course_id = t.course_id
					AND bt2.day_of_week = bt.day_of_week
					AND bt2.start_time = bt.start_time AND bt2.end_time = bt.end_time
					AND bt2.date >= $1::date
					AND NOT EXISTS (
						SELECT 1 FROM booking_cancellation bc
						WHERE bc.student_id = b2.student_id AND bc.timeslot_id = t.timeslot_id
					)
			)
		ORDER BY bt.date, t.timeslot_id
	`
	var ids []int64
	if err := r.DB.SelectContext(ctx, &ids, query, fromDate); err != nil {
		logger.Error("BookingRepository:ListSweepCandidates:Error", "error", err)
		return nil, err
	}
	return ids, nil
}

func (r *BookingRepository) TutorTeachesCourse(ctx context.Context, tutorID, courseID int64) (bool, error) {
	var teaches bool
	query := `SELECT EXISTS (SELECT 1 FROM tutor_course WHERE tutor_id = $1 AND course_id = $2)`
	if err := r.DB.GetContext(ctx, &teaches, query, tutorID, courseID); err != nil {
		logger.Error("BookingRepository:TutorTeachesCourse:Error", "error", err)
		return false, err
	}
	return teaches, nil
}
