package dto

import "time"

type BookRequest struct {
	TimeslotID int64 `json:"timeslot_id" validate:"required,gt=0"`
	Recurring  bool  `json:"recurring"`
}

type CancelRequest struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0"`
}

type TimeslotRequest struct {
	TimeslotID int64 `json:"timeslot_id" validate:"required,gt=0"`
}

type CreateTimeslotRequest struct {
	TutorID   int64  `json:"tutor_id" validate:"required,gt=0"`
	CourseID  int64  `json:"course_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,date"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// PropagatedBooking is a booking created by extending a recurring series.
type PropagatedBooking struct {
	TimeslotID int64  `json:"timeslot_id"`
	Date       string `json:"date"`
	BookingID  int64  `json:"booking_id"`
}

type BookResponse struct {
	BookingID        int64               `json:"booking_id"`
	TimeslotID       int64               `json:"timeslot_id"`
	Recurring        bool                `json:"recurring"`
	ExistingBookings []PropagatedBooking `json:"existing_bookings"`
	ExistingCount    int                 `json:"existing_count"`
	Message          string              `json:"message"`
}

type CancelResponse struct {
	BookingID  int64  `json:"booking_id"`
	TimeslotID int64  `json:"timeslot_id"`
	Message    string `json:"message"`
}

type CancelRecurringResponse struct {
	CancelledCount int      `json:"cancelled_count"`
	CancelledDates []string `json:"cancelled_dates"`
	Message        string   `json:"message"`
}

type AutoBookExistingResponse struct {
	AutoBookings []PropagatedBooking `json:"auto_bookings"`
	Count        int                 `json:"count"`
	Message      string              `json:"message"`
}

type AutoBooking struct {
	StudentID       int64   `json:"student_id"`
	StudentNickname *string `json:"student_nickname"`
	BookingID       int64   `json:"booking_id"`
}

type AutoBookResponse struct {
	TimeslotID      int64         `json:"timeslot_id"`
	AutoBookings    []AutoBooking `json:"auto_bookings"`
	SkippedStudents []int64       `json:"skipped_students"`
	Count           int           `json:"count"`
	Message         string        `json:"message"`
}

type BookingResponse struct {
	BookingID     int64     `json:"booking_id"`
	BookingDate   time.Time `json:"booking_date"`
	TimeslotID    int64     `json:"timeslot_id"`
	TutorID       int64     `json:"tutor_id"`
	TutorName     string    `json:"tutor_name"`
	TutorSurname  string    `json:"tutor_surname"`
	PhotoLink     *string   `json:"photo_link"`
	CourseName    string    `json:"course_name"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Repeatability string    `json:"repeatability"`
}

type MyBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Count    int               `json:"count"`
}

type TimeslotResponse struct {
	TimeslotID    int64  `json:"timeslot_id"`
	TutorID       int64  `json:"tutor_id"`
	CourseID      int64  `json:"course_id"`
	Date          string `json:"date"`
	DayOfWeek     int    `json:"day_of_week"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Repeatability string `json:"repeatability"`
}

type CreateTimeslotResponse struct {
	Timeslot    TimeslotResponse  `json:"timeslot"`
	AutoBooking *AutoBookResponse `json:"auto_booking"`
}

type SweepResponse struct {
	Checked int `json:"checked"`
	Booked  int `json:"booked"`
}
