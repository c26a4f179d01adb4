package service

import (
	"context"
	"fmt"

	"classtime/core/constants"
	"classtime/core/database"
	"classtime/core/errors"
	"classtime/core/logger"
	"classtime/core/metrics"
	"classtime/core/queue"
	"classtime/core/utils"
	"classtime/modules/booking/dto"
	"classtime/modules/booking/entity"
	"classtime/modules/booking/mapper"
	"classtime/modules/booking/repository"
)

// AutoBookRecurring gives a newly available timeslot to the students who
// hold its recurring pattern. A timeslot takes one booking, so only the most
// senior holder (lowest first booking id) gets it and the rest are reported
// as skipped. The booked student is notified in the background.
func (service *BookingService) AutoBookRecurring(ctx context.Context, timeslotID int64) (*dto.AutoBookResponse, *errors.AppError) {
	today := service.today()
	resp := &dto.AutoBookResponse{
		TimeslotID:      timeslotID,
		AutoBookings:    []dto.AutoBooking{},
		SkippedStudents: []int64{},
	}
	var notice *queue.AutoBookingNotice

	err := service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		timeslot, err := tx.LockTimeslot(ctx, timeslotID)
		if err != nil {
			return err
		}
		if timeslot == nil {
			return errTimeslotNotFound()
		}
		if timeslot.Status != constants.TimeslotAvailable {
			return errTimeslotTaken()
		}
		if timeslot.Date < today {
			return errTimeslotInThePast()
		}

		holders, err := tx.ListPatternHolders(ctx, timeslot.Pattern(), timeslot.TimeslotID, today)
		if err != nil {
			return err
		}
		if len(holders) == 0 {
			return nil
		}

		winner := holders[0]
		booking, err := bookTimeslot(ctx, tx, winner.StudentID, timeslot, constants.RepeatabilityRepeated)
		if err != nil {
			return err
		}

		resp.AutoBookings = append(resp.AutoBookings, dto.AutoBooking{
			StudentID:       winner.StudentID,
			StudentNickname: winner.StudentNickname,
			BookingID:       booking.BookingID,
		})
		for _, holder := range holders[1:] {
			resp.SkippedStudents = append(resp.SkippedStudents, holder.StudentID)
		}
		notice = newAutoBookingNotice(winner.StudentID, booking.BookingID, timeslot)
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to auto-book timeslot")
	}

	resp.Count = len(resp.AutoBookings)
	if resp.Count == 0 {
		resp.Message = "No matching recurring bookings found"
		return resp, nil
	}
	resp.Message = fmt.Sprintf("Automatic bookings created for %d students", resp.Count)
	metrics.BookingsCreatedTotal.WithLabelValues("auto").Add(float64(resp.Count))

	logger.Info("BookingService:AutoBookRecurring:Success",
		"timeslot_id", timeslotID,
		"student_id", notice.StudentID,
		"skipped", len(resp.SkippedStudents),
	)
	if err := service.enqueuer.EnqueueAutoBookingNotice(ctx, *notice); err != nil {
		logger.Error("BookingService:AutoBookRecurring:Enqueue:Error", "error", err, "booking_id", notice.BookingID)
	}
	return resp, nil
}

func newAutoBookingNotice(studentID, bookingID int64, timeslot *entity.Timeslot) *queue.AutoBookingNotice {
	return &queue.AutoBookingNotice{
		StudentID:  studentID,
		BookingID:  bookingID,
		TimeslotID: timeslot.TimeslotID,
		Date:       timeslot.Date,
		StartTime:  timeslot.StartTime,
		EndTime:    timeslot.EndTime,
		TutorName:  utils.JoinName(timeslot.TutorName, timeslot.TutorSurname),
		CourseName: timeslot.CourseName,
	}
}

// CreateTimeslot adds an available timeslot and immediately offers it to the
// holders of its recurring pattern.
func (service *BookingService) CreateTimeslot(ctx context.Context, req *dto.CreateTimeslotRequest) (*dto.CreateTimeslotResponse, *errors.AppError) {
	date, ok := utils.ParseDate(req.Date, service.loc)
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD", nil)
	}
	startTime, okStart := utils.ParseClock(req.StartTime)
	endTime, okEnd := utils.ParseClock(req.EndTime)
	if !okStart || !okEnd {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid time format. Use HH:MM", nil)
	}
	if endTime <= startTime {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "End time must be after start time", nil)
	}
	if req.Date < service.today() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Cannot create a timeslot in the past", nil)
	}

	teaches, err := service.repo.TutorTeachesCourse(ctx, req.TutorID, req.CourseID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check tutor course", err)
	}
	if !teaches {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Tutor does not teach this course", nil)
	}

	timeslot := &entity.Timeslot{
		TutorID:       req.TutorID,
		CourseID:      req.CourseID,
		Status:        constants.TimeslotAvailable,
		Repeatability: constants.RepeatabilitySingle,
		Date:          req.Date,
		DayOfWeek:     utils.ISOWeekday(date),
		StartTime:     startTime,
		EndTime:       endTime,
	}

	err = service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		baseID, err := tx.GetOrCreateBaseTimeslot(ctx, timeslot.Date, timeslot.DayOfWeek, timeslot.StartTime, timeslot.EndTime)
		if err != nil {
			return err
		}
		timeslot.BaseTimeslotID = baseID
		return tx.InsertTimeslot(ctx, timeslot)
	})
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Tutor or course not found", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create timeslot", err)
	}
	logger.Info("BookingService:CreateTimeslot:Success", "timeslot_id", timeslot.TimeslotID, "date", timeslot.Date)

	resp := &dto.CreateTimeslotResponse{Timeslot: mapper.ToTimeslotResponse(timeslot)}
	autoBook, appErr := service.AutoBookRecurring(ctx, timeslot.TimeslotID)
	if appErr != nil {
		logger.Warn("BookingService:CreateTimeslot:AutoBook:Error", "error", appErr, "timeslot_id", timeslot.TimeslotID)
		return resp, nil
	}
	resp.AutoBooking = autoBook
	if autoBook.Count > 0 {
		resp.Timeslot.Status = constants.TimeslotBooked
		resp.Timeslot.Repeatability = constants.RepeatabilityRepeated
	}
	return resp, nil
}

// SweepRecurring runs AutoBookRecurring over every available timeslot whose
// pattern still has holders. Failures on single timeslots are logged and
// skipped.
func (service *BookingService) SweepRecurring(ctx context.Context) (*dto.SweepResponse, *errors.AppError) {
	ids, err := service.repo.ListSweepCandidates(ctx, service.today())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list sweep candidates", err)
	}

	resp := &dto.SweepResponse{}
	for _, id := range ids {
		if ctx.Err() != nil {
			return resp, errors.NewAppError(errors.ErrInternalServer, "sweep interrupted", ctx.Err())
		}
		resp.Checked++

		result, appErr := service.AutoBookRecurring(ctx, id)
		if appErr != nil {
			logger.Warn("BookingService:SweepRecurring:Skip", "error", appErr, "timeslot_id", id)
			continue
		}
		resp.Booked += result.Count
	}

	logger.Info("BookingService:SweepRecurring:Done", "checked", resp.Checked, "booked", resp.Booked)
	return resp, nil
}
