package service

import (
	"context"
	"fmt"
	"time"

	"classtime/core/constants"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/utils"

	ics "github.com/arran4/golang-ical"
	"github.com/gosimple/slug"
)

const icalDateTimeLayout = constants.DateLayout + " " + constants.TimeLayout

// ExportICal renders the student's bookings as an iCalendar feed and returns
// it with the attachment filename.
func (service *BookingService) ExportICal(ctx context.Context, studentID int64, nickname string) ([]byte, string, *errors.AppError) {
	rows, err := service.repo.GetMyBookings(ctx, studentID)
	if err != nil {
		return nil, "", errors.NewAppError(errors.ErrInternalServer, "failed to get bookings", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ClassTime//Bookings//EN")
	cal.SetName("ClassTime bookings")

	now := service.now()
	for _, row := range rows {
		start, errStart := time.ParseInLocation(icalDateTimeLayout, row.Date+" "+row.StartTime, service.loc)
		end, errEnd := time.ParseInLocation(icalDateTimeLayout, row.Date+" "+row.EndTime, service.loc)
		if errStart != nil || errEnd != nil {
			logger.Warn("BookingService:ExportICal:BadTime", "booking_id", row.BookingID)
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("booking-%d@classtime", row.BookingID))
		event.SetDtStampTime(now)
		event.SetCreatedTime(row.BookingDate)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s with %s", row.CourseName, utils.JoinName(row.TutorName, row.TutorSurname)))
		if row.Repeatability == constants.RepeatabilityRepeated {
			event.SetDescription("Recurring lesson")
		}
	}

	filename := "classtime-bookings.ics"
	if s := slug.Make(nickname); s != "" {
		filename = "classtime-" + s + ".ics"
	}
	return []byte(cal.Serialize()), filename, nil
}
