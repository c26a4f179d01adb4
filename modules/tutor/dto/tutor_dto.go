package dto

type SearchRequest struct {
	Query string `json:"query" validate:"required,notblank,max=100"`
}

type TutorResponse struct {
	TutorID   int64   `json:"tutor_id"`
	Name      string  `json:"name"`
	Surname   string  `json:"surname"`
	PhotoLink *string `json:"photo_link"`
	Courses   string  `json:"courses"`
	CourseIDs string  `json:"course_ids"`
}

type SearchResponse struct {
	Tutors []TutorResponse `json:"tutors"`
	Count  int             `json:"count"`
}

type AvailableDateResponse struct {
	Date           string `json:"date"`
	AvailableSlots int    `json:"available_slots"`
}

type TimeslotResponse struct {
	TimeslotID    int64  `json:"timeslot_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CourseID      int64  `json:"course_id"`
	CourseName    string `json:"course_name"`
	Repeatability string `json:"repeatability"`
}

type CalendarEntry struct {
	TimeslotID      int64   `json:"timeslot_id"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Status          string  `json:"status"`
	Repeatability   string  `json:"repeatability"`
	TutorID         int64   `json:"tutor_id"`
	TutorName       string  `json:"tutor_name"`
	CourseID        int64   `json:"course_id"`
	CourseName      string  `json:"course_name"`
	IsBooked        bool    `json:"is_booked"`
	IsMine          bool    `json:"is_mine"`
	BookingID       *int64  `json:"booking_id"`
	StudentID       *int64  `json:"student_id"`
	StudentNickname *string `json:"student_nickname"`
}

type MonthCalendarResponse struct {
	Month    int                        `json:"month"`
	Year     int                        `json:"year"`
	TutorID  *int64                     `json:"tutor_id"`
	Calendar map[string][]CalendarEntry `json:"calendar"`
}

type WeekDay struct {
	Date      string          `json:"date"`
	DayOfWeek int             `json:"day_of_week"`
	Entries   []CalendarEntry `json:"entries"`
}

type WeekCalendarResponse struct {
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	TutorID   *int64    `json:"tutor_id"`
	Days      []WeekDay `json:"days"`
}
