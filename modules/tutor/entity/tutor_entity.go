package entity

// TutorSearchRow is one tutor with the courses they teach aggregated.
type TutorSearchRow struct {
	TutorID   int64   `db:"tutor_id"`
	Name      string  `db:"name"`
	Surname   string  `db:"surname"`
	PhotoLink *string `db:"photo_link"`
	Courses   string  `db:"courses"`
	CourseIDs string  `db:"course_ids"`
}

type AvailableDate struct {
	Date           string `db:"date"`
	AvailableSlots int    `db:"available_slots"`
}

type AvailableTimeslot struct {
	TimeslotID    int64  `db:"timeslot_id"`
	Date          string `db:"date"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
	CourseID      int64  `db:"course_id"`
	CourseName    string `db:"course_name"`
	Repeatability string `db:"repeatability"`
}

// CalendarRow is a timeslot joined with its tutor, course and optional booking.
type CalendarRow struct {
	TimeslotID      int64   `db:"timeslot_id"`
	Date            string  `db:"date"`
	StartTime       string  `db:"start_time"`
	EndTime         string  `db:"end_time"`
	Status          string  `db:"status"`
	Repeatability   string  `db:"repeatability"`
	TutorID         int64   `db:"tutor_id"`
	TutorName       string  `db:"tutor_name"`
	TutorSurname    string  `db:"tutor_surname"`
	CourseID        int64   `db:"course_id"`
	CourseName      string  `db:"course_name"`
	BookingID       *int64  `db:"booking_id"`
	StudentID       *int64  `db:"student_id"`
	StudentNickname *string `db:"student_nickname"`
}
