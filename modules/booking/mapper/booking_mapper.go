package mapper

import (
	"classtime/modules/booking/dto"
	"classtime/modules/booking/entity"
)

func ToBookingResponses(rows []entity.BookingDetail) []dto.BookingResponse {
	bookings := make([]dto.BookingResponse, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, dto.BookingResponse{
			BookingID:     row.BookingID,
			BookingDate:   row.BookingDate,
			TimeslotID:    row.TimeslotID,
			TutorID:       row.TutorID,
			TutorName:     row.TutorName,
			TutorSurname:  row.TutorSurname,
			PhotoLink:     row.PhotoLink,
			CourseName:    row.CourseName,
			Date:          row.Date,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			Repeatability: row.Repeatability,
		})
	}
	return bookings
}

func ToTimeslotResponse(t *entity.Timeslot) dto.TimeslotResponse {
	return dto.TimeslotResponse{
		TimeslotID:    t.TimeslotID,
		TutorID:       t.TutorID,
		CourseID:      t.CourseID,
		Date:          t.Date,
		DayOfWeek:     t.DayOfWeek,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Status:        t.Status,
		Repeatability: t.Repeatability,
	}
}
