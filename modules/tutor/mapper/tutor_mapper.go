package mapper

import (
	"classtime/core/constants"
	"classtime/core/utils"
	"classtime/modules/tutor/dto"
	"classtime/modules/tutor/entity"
)

func ToTutorResponses(rows []entity.TutorSearchRow) []dto.TutorResponse {
	tutors := make([]dto.TutorResponse, 0, len(rows))
	for _, row := range rows {
		tutors = append(tutors, dto.TutorResponse{
			TutorID:   row.TutorID,
			Name:      row.Name,
			Surname:   row.Surname,
			PhotoLink: row.PhotoLink,
			Courses:   row.Courses,
			CourseIDs: row.CourseIDs,
		})
	}
	return tutors
}

func ToAvailableDateResponses(rows []entity.AvailableDate) []dto.AvailableDateResponse {
	dates := make([]dto.AvailableDateResponse, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, dto.AvailableDateResponse{Date: row.Date, AvailableSlots: row.AvailableSlots})
	}
	return dates
}

func ToTimeslotResponses(rows []entity.AvailableTimeslot) []dto.TimeslotResponse {
	slots := make([]dto.TimeslotResponse, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, dto.TimeslotResponse{
			TimeslotID:    row.TimeslotID,
			Date:          row.Date,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			CourseID:      row.CourseID,
			CourseName:    row.CourseName,
			Repeatability: row.Repeatability,
		})
	}
	return slots
}

// ToCalendarEntry flags the entry as mine when studentID holds its booking.
func ToCalendarEntry(row entity.CalendarRow, studentID int64) dto.CalendarEntry {
	return dto.CalendarEntry{
		TimeslotID:      row.TimeslotID,
		StartTime:       row.StartTime,
		EndTime:         row.EndTime,
		Status:          row.Status,
		Repeatability:   row.Repeatability,
		TutorID:         row.TutorID,
		TutorName:       utils.JoinName(row.TutorName, row.TutorSurname),
		CourseID:        row.CourseID,
		CourseName:      row.CourseName,
		IsBooked:        row.Status == constants.TimeslotBooked || row.BookingID != nil,
		IsMine:          row.StudentID != nil && *row.StudentID == studentID,
		BookingID:       row.BookingID,
		StudentID:       row.StudentID,
		StudentNickname: row.StudentNickname,
	}
}
