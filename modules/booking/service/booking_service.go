package service

import (
	"context"
	"fmt"
	"time"

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

type BookingServiceInterface interface {
	GetMyBookings(ctx context.Context, studentID int64) (*dto.MyBookingsResponse, *errors.AppError)
	Book(ctx context.Context, studentID int64, req *dto.BookRequest) (*dto.BookResponse, *errors.AppError)
	Cancel(ctx context.Context, studentID, bookingID int64) (*dto.CancelResponse, *errors.AppError)
	CancelRecurring(ctx context.Context, studentID, timeslotID int64) (*dto.CancelRecurringResponse, *errors.AppError)
	AutoBookExisting(ctx context.Context, studentID, timeslotID int64) (*dto.AutoBookExistingResponse, *errors.AppError)
	AutoBookRecurring(ctx context.Context, timeslotID int64) (*dto.AutoBookResponse, *errors.AppError)
	CreateTimeslot(ctx context.Context, req *dto.CreateTimeslotRequest) (*dto.CreateTimeslotResponse, *errors.AppError)
	SweepRecurring(ctx context.Context) (*dto.SweepResponse, *errors.AppError)
	ExportICal(ctx context.Context, studentID int64, nickname string) ([]byte, string, *errors.AppError)
}

type BookingService struct {
	repo     repository.BookingRepositoryInterface
	enqueuer queue.Enqueuer
	loc      *time.Location
	now      func() time.Time
}

func NewBookingService(repo repository.BookingRepositoryInterface, enqueuer queue.Enqueuer, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		repo:     repo,
		enqueuer: enqueuer,
		loc:      loc,
		now:      time.Now,
	}
}

func (service *BookingService) today() string {
	return utils.Today(service.now(), service.loc)
}

// toAppError passes AppErrors returned from inside a transaction through and
// wraps anything else as an internal error.
func toAppError(err error, message string) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	return errors.NewAppError(errors.ErrInternalServer, message, err)
}

func errTimeslotNotFound() *errors.AppError {
	return errors.NewAppError(errors.ErrNotFound, "Timeslot not found", nil)
}

func errTimeslotTaken() *errors.AppError {
	return errors.NewAppError(errors.ErrConflict, "Timeslot is no longer available", nil)
}

func errTimeslotInThePast() *errors.AppError {
	return errors.NewAppError(errors.ErrInvalidInput, "Cannot book a timeslot in the past", nil)
}

func (service *BookingService) GetMyBookings(ctx context.Context, studentID int64) (*dto.MyBookingsResponse, *errors.AppError) {
	rows, err := service.repo.GetMyBookings(ctx, studentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get bookings", err)
	}
	bookings := mapper.ToBookingResponses(rows)
	return &dto.MyBookingsResponse{Bookings: bookings, Count: len(bookings)}, nil
}

// Book reserves a timeslot. A recurring booking also books every other
// available timeslot of the same pattern from today on.
func (service *BookingService) Book(ctx context.Context, studentID int64, req *dto.BookRequest) (*dto.BookResponse, *errors.AppError) {
	today := service.today()
	resp := &dto.BookResponse{
		TimeslotID:       req.TimeslotID,
		Recurring:        req.Recurring,
		ExistingBookings: []dto.PropagatedBooking{},
	}

	err := service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		timeslot, err := tx.LockTimeslot(ctx, req.TimeslotID)
		if err != nil {
			return err
		}
		if timeslot == nil {
			return errTimeslotNotFound()
		}

		existing, err := tx.GetStudentBookingForTimeslot(ctx, studentID, timeslot.TimeslotID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.NewAppError(errors.ErrConflict, "You already have a booking for this timeslot", nil)
		}
		if timeslot.Status != constants.TimeslotAvailable {
			return errTimeslotTaken()
		}
		if timeslot.Date < today {
			return errTimeslotInThePast()
		}

		repeatability := constants.RepeatabilitySingle
		if req.Recurring {
			repeatability = constants.RepeatabilityRepeated
		}

		booking, err := bookTimeslot(ctx, tx, studentID, timeslot, repeatability)
		if err != nil {
			return err
		}
		if err := tx.ClearCancellation(ctx, studentID, timeslot.TimeslotID); err != nil {
			return err
		}
		resp.BookingID = booking.BookingID

		if req.Recurring {
			resp.ExistingBookings = service.propagate(ctx, tx, studentID, timeslot, today)
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to book timeslot")
	}

	resp.ExistingCount = len(resp.ExistingBookings)
	switch {
	case !req.Recurring:
		resp.Message = "Booking confirmed"
		metrics.BookingsCreatedTotal.WithLabelValues("single").Inc()
	case resp.ExistingCount > 0:
		resp.Message = fmt.Sprintf("Recurring booking confirmed. %d more matching timeslots were booked", resp.ExistingCount)
		metrics.BookingsCreatedTotal.WithLabelValues("recurring").Inc()
		metrics.BookingsCreatedTotal.WithLabelValues("propagated").Add(float64(resp.ExistingCount))
	default:
		resp.Message = "Recurring booking confirmed. No other matching timeslots are available yet"
		metrics.BookingsCreatedTotal.WithLabelValues("recurring").Inc()
	}

	logger.Info("BookingService:Book:Success",
		"student_id", studentID,
		"timeslot_id", req.TimeslotID,
		"booking_id", resp.BookingID,
		"recurring", req.Recurring,
		"propagated", resp.ExistingCount,
	)
	return resp, nil
}

// bookTimeslot inserts the booking and marks the timeslot booked. A unique
// violation means another transaction took the timeslot first.
func bookTimeslot(ctx context.Context, tx repository.TxRepository, studentID int64, timeslot *entity.Timeslot, repeatability string) (*entity.Booking, error) {
	booking := &entity.Booking{
		StudentID:  studentID,
		TimeslotID: timeslot.TimeslotID,
		CourseID:   timeslot.CourseID,
	}
	if err := tx.InsertBooking(ctx, booking); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errTimeslotTaken()
		}
		return nil, err
	}
	if err := tx.SetTimeslotState(ctx, timeslot.TimeslotID, constants.TimeslotBooked, repeatability); err != nil {
		return nil, err
	}
	return booking, nil
}

// propagate books the remaining timeslots of source's pattern for studentID.
// Every candidate runs under its own savepoint; a failing candidate is logged
// and skipped without affecting the others.
func (service *BookingService) propagate(ctx context.Context, tx repository.TxRepository, studentID int64, source *entity.Timeslot, today string) []dto.PropagatedBooking {
	created := []dto.PropagatedBooking{}

	var candidates []entity.Timeslot
	err := tx.Savepoint(ctx, "propagation_candidates", func() error {
		var err error
		candidates, err = tx.LockPropagationCandidates(ctx, source.Pattern(), studentID, source.TimeslotID, today)
		return err
	})
	if err != nil {
		logger.Error("BookingService:Propagate:Candidates:Error", "error", err, "timeslot_id", source.TimeslotID)
		return created
	}

	for i := range candidates {
		candidate := &candidates[i]
		var booking *entity.Booking
		err := tx.Savepoint(ctx, fmt.Sprintf("propagate_%d", i), func() error {
			var err error
			booking, err = bookTimeslot(ctx, tx, studentID, candidate, constants.RepeatabilityRepeated)
			return err
		})
		if err != nil {
			metrics.PropagationFailuresTotal.Inc()
			logger.Warn("BookingService:Propagate:Skip",
				"error", err,
				"student_id", studentID,
				"timeslot_id", candidate.TimeslotID,
			)
			continue
		}
		created = append(created, dto.PropagatedBooking{
			TimeslotID: candidate.TimeslotID,
			Date:       candidate.Date,
			BookingID:  booking.BookingID,
		})
	}
	return created
}

func (service *BookingService) Cancel(ctx context.Context, studentID, bookingID int64) (*dto.CancelResponse, *errors.AppError) {
	var resp *dto.CancelResponse

	err := service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		booking, err := tx.LockBooking(ctx, bookingID, studentID)
		if err != nil {
			return err
		}
		if booking == nil {
			return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		if err := releaseBooking(ctx, tx, booking.StudentID, booking.BookingID, booking.TimeslotID); err != nil {
			return err
		}
		resp = &dto.CancelResponse{
			BookingID:  booking.BookingID,
			TimeslotID: booking.TimeslotID,
			Message:    "Booking cancelled",
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to cancel booking")
	}

	metrics.BookingsCancelledTotal.WithLabelValues("single").Inc()
	logger.Info("BookingService:Cancel:Success", "student_id", studentID, "booking_id", bookingID)
	return resp, nil
}

// releaseBooking deletes a booking and makes its timeslot bookable again.
// The cancellation is remembered so automatic booking never returns the
// timeslot to the same student.
func releaseBooking(ctx context.Context, tx repository.TxRepository, studentID, bookingID, timeslotID int64) error {
	if err := tx.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}
	if err := tx.RecordCancellation(ctx, studentID, timeslotID); err != nil {
		return err
	}
	return tx.SetTimeslotState(ctx, timeslotID, constants.TimeslotAvailable, constants.RepeatabilitySingle)
}

// CancelRecurring cancels the caller's bookings of timeslotID's series from
// today on. Past bookings are kept.
func (service *BookingService) CancelRecurring(ctx context.Context, studentID, timeslotID int64) (*dto.CancelRecurringResponse, *errors.AppError) {
	today := service.today()
	resp := &dto.CancelRecurringResponse{CancelledDates: []string{}}

	err := service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		timeslot, err := tx.LockTimeslot(ctx, timeslotID)
		if err != nil {
			return err
		}
		if timeslot == nil {
			return errTimeslotNotFound()
		}
		if timeslot.Repeatability != constants.RepeatabilityRepeated {
			return errors.NewAppError(errors.ErrInvalidInput, "This is not a recurring booking", nil)
		}

		bookings, err := tx.ListRecurringBookings(ctx, timeslot.Pattern(), studentID, today)
		if err != nil {
			return err
		}
		if len(bookings) == 0 {
			return errors.NewAppError(errors.ErrNotFound, "No recurring bookings found", nil)
		}

		for i, booking := range bookings {
			err := tx.Savepoint(ctx, fmt.Sprintf("cancel_%d", i), func() error {
				return releaseBooking(ctx, tx, studentID, booking.BookingID, booking.TimeslotID)
			})
			if err != nil {
				logger.Warn("BookingService:CancelRecurring:Skip", "error", err, "booking_id", booking.BookingID)
				continue
			}
			resp.CancelledDates = append(resp.CancelledDates, booking.Date)
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to cancel recurring bookings")
	}

	resp.CancelledCount = len(resp.CancelledDates)
	resp.Message = fmt.Sprintf("Cancelled %d recurring bookings", resp.CancelledCount)
	metrics.BookingsCancelledTotal.WithLabelValues("recurring").Add(float64(resp.CancelledCount))
	logger.Info("BookingService:CancelRecurring:Success", "student_id", studentID, "timeslot_id", timeslotID, "cancelled", resp.CancelledCount)
	return resp, nil
}

// AutoBookExisting extends the caller's recurring booking of timeslotID to
// every matching timeslot created since. Running it again books nothing new.
func (service *BookingService) AutoBookExisting(ctx context.Context, studentID, timeslotID int64) (*dto.AutoBookExistingResponse, *errors.AppError) {
	today := service.today()
	resp := &dto.AutoBookExistingResponse{AutoBookings: []dto.PropagatedBooking{}}
	recurring := false

	err := service.repo.WithTx(ctx, func(tx repository.TxRepository) error {
		timeslot, err := tx.LockTimeslot(ctx, timeslotID)
		if err != nil {
			return err
		}
		if timeslot == nil || timeslot.Repeatability != constants.RepeatabilityRepeated {
			return nil
		}
		recurring = true

		owned, err := tx.GetStudentBookingForTimeslot(ctx, studentID, timeslot.TimeslotID)
		if err != nil {
			return err
		}
		if owned == nil {
			return errors.NewAppError(errors.ErrForbidden, "You do not have a booking for this timeslot", nil)
		}

		resp.AutoBookings = service.propagate(ctx, tx, studentID, timeslot, today)
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to auto-book timeslots")
	}

	resp.Count = len(resp.AutoBookings)
	switch {
	case !recurring:
		resp.Message = "Not a recurring booking or timeslot not found"
	case resp.Count == 0:
		resp.Message = "No new matching timeslots to book"
	default:
		resp.Message = fmt.Sprintf("Automatically booked %d matching timeslots", resp.Count)
		metrics.BookingsCreatedTotal.WithLabelValues("propagated").Add(float64(resp.Count))
	}
	return resp, nil
}
