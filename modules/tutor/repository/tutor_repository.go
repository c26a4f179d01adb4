package repository

import (
	"context"

	"classtime/core/database"
	"classtime/core/logger"
	"classtime/modules/tutor/entity"
)

type TutorRepositoryInterface interface {
	SearchTutors(ctx context.Context, query string) ([]entity.TutorSearchRow, error)
	GetAvailableDates(ctx context.Context, tutorID int64, fromDate string) ([]entity.AvailableDate, error)
	GetAvailableTimeslots(ctx context.Context, tutorID int64, date string) ([]entity.AvailableTimeslot, error)
	GetCalendarRows(ctx context.Context, fromDate, toDate string, tutorID *int64) ([]entity.CalendarRow, error)
}

type TutorRepository struct {
	DB database.IDatabase
}

func NewTutorRepository(db database.IDatabase) *TutorRepository {
	return &TutorRepository{DB: db}
}

func (r *TutorRepository) SearchTutors(ctx context.Context, query string) ([]entity.TutorSearchRow, error) {
	sqlQuery := `
		SELECT t.tutor_id, t.name, t.surname, t.photo_link,
			COALESCE(string_agg(DISTINCT c.course_name, ', '), '') AS courses,
			COALESCE(string_agg(DISTINCT c.course_id::text, ','), '') AS course_ids
		FROM tutor t
		LEFT JOIN tutor_course tc ON tc.tutor_id = t.tutor_id
		LEFT JOIN course c ON c.course_id = tc.course_id
		WHERE t.tutor_id IN (
			SELECT t2.tutor_id
			FROM tutor t2
			LEFT JOIN tutor_course tc2 ON tc2.tutor_id = t2.tutor_id
			LEFT JOIN course c2 ON c2.course_id = tc2.course_id
			WHERE t2.name ILIKE $1 OR t2.surname ILIKE $1 OR c2.course_name ILIKE $1
		)
		GROUP BY t.tutor_id, t.name, t.surname, t.photo_link
		ORDER BY t.name, t.surname
	`
	var rows []entity.TutorSearchRow
	if err := r.DB.SelectContext(ctx, &rows, sqlQuery, "%"+query+"%"); err != nil {
		logger.Error("TutorRepository:SearchTutors:Error", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *TutorRepository) GetAvailableDates(ctx context.Context, tutorID int64, fromDate string) ([]entity.AvailableDate, error) {
	query := `
		SELECT to_char(bt.date, 'YYYY-MM-DD') AS date, COUNT(*) AS available_slots
		FROM timeslot t
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		WHERE t.tutor_id = $1 AND t.status = 'available' AND bt.date >= $2::date
		GROUP BY bt.date
		ORDER BY bt.date
	`
	var rows []entity.AvailableDate
	if err := r.DB.SelectContext(ctx, &rows, query, tutorID, fromDate); err != nil {
		logger.Error("TutorRepository:GetAvailableDates:Error", "error", err, "tutor_id", tutorID)
		return nil, err
	}
	return rows, nil
}

func (r *TutorRepository) GetAvailableTimeslots(ctx context.Context, tutorID int64, date string) ([]entity.AvailableTimeslot, error) {
	query := `
		SELECT t.timeslot_id,
			to_char(bt.date, 'YYYY-MM-DD') AS date,
			to_char(bt.start_time, 'HH24:MI:SS') AS start_time,
			to_char(bt.end_time, 'HH24:MI:SS') AS end_time,
			t.course_id, c.course_name, t.repeatability
		FROM timeslot t
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		JOIN course c ON c.course_id = t.course_id
		WHERE t.tutor_id = $1 AND bt.date = $2::date AND t.status = 'available'
		ORDER BY bt.start_time, t.timeslot_id
	`
	var rows []entity.AvailableTimeslot
	if err := r.DB.SelectContext(ctx, &rows, query, tutorID, date); err != nil {
		logger.Error("TutorRepository:GetAvailableTimeslots:Error", "error", err, "tutor_id", tutorID, "date", date)
		return nil, err
	}
	return rows, nil
}

// GetCalendarRows returns every timeslot between fromDate and toDate inclusive.
// A nil tutorID means all tutors.
func (r *TutorRepository) GetCalendarRows(ctx context.Context, fromDate, toDate string, tutorID *int64) ([]entity.CalendarRow, error) {
	query := `
		SELECT t.timeslot_id,
			to_char(bt.date, 'YYYY-MM-DD') AS date,
			to_char(bt.start_time, 'HH24:MI:SS') AS start_time,
			to_char(bt.end_time, 'HH24:MI:SS') AS end_time,
			t.status, t.repeatability,
			t.tutor_id, tu.name AS tutor_name, tu.surname AS tutor_surname,
			t.course_id, c.course_name,
			b.booking_id, b.student_id, s.nickname AS student_nickname
		FROM timeslot t
		JOIN base_timeslot bt ON bt.base_timeslot_id = t.base_timeslot_id
		JOIN tutor tu ON tu.tutor_id = t.tutor_id
		JOIN course c ON c.course_id = t.course_id
		LEFT JOIN booking b ON b.timeslot_id = t.timeslot_id
		LEFT JOIN student s ON s.student_id = b.student_id
		WHERE bt.date BETWEEN $1::date AND $2::date
			AND ($3::bigint IS NULL OR t.tutor_id = $3)
		ORDER BY bt.date, bt.start_time, t.timeslot_id
	`
	var rows []entity.CalendarRow
	if err := r.DB.SelectContext(ctx, &rows, query, fromDate, toDate, tutorID); err != nil {
		logger.Error("TutorRepository:GetCalendarRows:Error", "error", err, "from", fromDate, "to", toDate)
		return nil, err
	}
	return rows, nil
}
