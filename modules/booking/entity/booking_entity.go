package entity

import "time"

// Timeslot is a timeslot joined with its base timeslot, tutor and course.
type Timeslot struct {
	TimeslotID     int64  `db:"timeslot_id"`
	BaseTimeslotID int64  `db:"base_timeslot_id"`
	TutorID        int64  `db:"tutor_id"`
	CourseID       int64  `db:"course_id"`
	Status         string `db:"status"`
	Repeatability  string `db:"repeatability"`
	Date           string `db:"date"`
	DayOfWeek      int    `db:"day_of_week"`
	StartTime      string `db:"start_time"`
	EndTime        string `db:"end_time"`
	TutorName      string `db:"tutor_name"`
	TutorSurname   string `db:"tutor_surname"`
	CourseName     string `db:"course_name"`
}

func (t *Timeslot) Pattern() Pattern {
	return Pattern{
		TutorID:   t.TutorID,
		CourseID:  t.CourseID,
		DayOfWeek: t.DayOfWeek,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
	}
}

// Pattern identifies a recurring series: the same tutor and course on the same
// weekday at the same time.
type Pattern struct {
	TutorID   int64
	CourseID  int64
	DayOfWeek int
	StartTime string
	EndTime   string
}

func (p Pattern) Matches(t *Timeslot) bool {
	return t != nil && p == t.Pattern()
}

type Booking struct {
	BookingID   int64     `db:"booking_id"`
	StudentID   int64     `db:"student_id"`
	TimeslotID  int64     `db:"timeslot_id"`
	CourseID    int64     `db:"course_id"`
	BookingDate time.Time `db:"booking_date"`
}

// BookingDetail is a student's booking with everything the booking list shows.
type BookingDetail struct {
	BookingID     int64     `db:"booking_id"`
	BookingDate   time.Time `db:"booking_date"`
	TimeslotID    int64     `db:"timeslot_id"`
	TutorID       int64     `db:"tutor_id"`
	TutorName     string    `db:"tutor_name"`
	TutorSurname  string    `db:"tutor_surname"`
	PhotoLink     *string   `db:"photo_link"`
	CourseName    string    `db:"course_name"`
	Date          string    `db:"date"`
	StartTime     string    `db:"start_time"`
	EndTime       string    `db:"end_time"`
	Repeatability string    `db:"repeatability"`
}

// RecurringBooking is one booking of a recurring series.
type RecurringBooking struct {
	BookingID  int64  `db:"booking_id"`
	TimeslotID int64  `db:"timeslot_id"`
	Date       string `db:"date"`
}

// PatternHolder is a student holding a recurring booking of a pattern.
// FirstBookingID orders holders by seniority.
type PatternHolder struct {
	StudentID       int64   `db:"student_id"`
	StudentNickname *string `db:"student_nickname"`
	FirstBookingID  int64   `db:"first_booking_id"`
}
