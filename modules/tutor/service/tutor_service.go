package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classtime/core/constants"
	"classtime/core/errors"
	"classtime/core/utils"
	"classtime/modules/tutor/dto"
	"classtime/modules/tutor/mapper"
	"classtime/modules/tutor/repository"
)

type TutorServiceInterface interface {
	Search(ctx context.Context, query string) (*dto.SearchResponse, *errors.AppError)
	Dates(ctx context.Context, tutorID int64) ([]dto.AvailableDateResponse, *errors.AppError)
	Timeslots(ctx context.Context, tutorID int64, date string) ([]dto.TimeslotResponse, *errors.AppError)
	MonthCalendar(ctx context.Context, studentID int64, month, year int, tutorID *int64) (*dto.MonthCalendarResponse, *errors.AppError)
	WeekCalendar(ctx context.Context, studentID int64, date string, tutorID *int64) (*dto.WeekCalendarResponse, *errors.AppError)
}

type TutorService struct {
	repo repository.TutorRepositoryInterface
	loc  *time.Location
	now  func() time.Time
}

func NewTutorService(repo repository.TutorRepositoryInterface, loc *time.Location) *TutorService {
	if loc == nil {
		loc = time.UTC
	}
	return &TutorService{repo: repo, loc: loc, now: time.Now}
}

func (service *TutorService) today() time.Time {
	now := service.now().In(service.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, service.loc)
}

func (service *TutorService) Search(ctx context.Context, query string) (*dto.SearchResponse, *errors.AppError) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Search query is required", nil)
	}

	rows, err := service.repo.SearchTutors(ctx, query)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to search tutors", err)
	}

	tutors := mapper.ToTutorResponses(rows)
	return &dto.SearchResponse{Tutors: tutors, Count: len(tutors)}, nil
}

func (service *TutorService) Dates(ctx context.Context, tutorID int64) ([]dto.AvailableDateResponse, *errors.AppError) {
	rows, err := service.repo.GetAvailableDates(ctx, tutorID, service.today().Format(constants.DateLayout))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get available dates", err)
	}
	return mapper.ToAvailableDateResponses(rows), nil
}

func (service *TutorService) Timeslots(ctx context.Context, tutorID int64, date string) ([]dto.TimeslotResponse, *errors.AppError) {
	if date == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date parameter is required", nil)
	}
	if _, ok := utils.ParseDate(date, service.loc); !ok {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD", nil)
	}

	rows, err := service.repo.GetAvailableTimeslots(ctx, tutorID, date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get timeslots", err)
	}
	return mapper.ToTimeslotResponses(rows), nil
}

// MonthCalendar groups a month's timeslots by date. Zero month or year means
// the current one.
func (service *TutorService) MonthCalendar(ctx context.Context, studentID int64, month, year int, tutorID *int64) (*dto.MonthCalendarResponse, *errors.AppError) {
	today := service.today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if month < 1 || month > 12 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Month must be between 1 and 12", nil)
	}
	if year < constants.MinCalendarYear || year > constants.MaxCalendarYear {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("Year must be between %d and %d", constants.MinCalendarYear, constants.MaxCalendarYear), nil)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, service.loc)
	last := first.AddDate(0, 1, -1)

	rows, err := service.repo.GetCalendarRows(ctx, first.Format(constants.DateLayout), last.Format(constants.DateLayout), tutorID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get calendar", err)
	}

	calendar := make(map[string][]dto.CalendarEntry)
	for _, row := range rows {
		calendar[row.Date] = append(calendar[row.Date], mapper.ToCalendarEntry(row, studentID))
	}

	return &dto.MonthCalendarResponse{
		Month:    month,
		Year:     year,
		TutorID:  tutorID,
		Calendar: calendar,
	}, nil
}

// WeekCalendar returns the Monday to Sunday week containing date (today when
// empty). All seven days are present.
func (service *TutorService) WeekCalendar(ctx context.Context, studentID int64, date string, tutorID *int64) (*dto.WeekCalendarResponse, *errors.AppError) {
	day := service.today()
	if date != "" {
		parsed, ok := utils.ParseDate(date, service.loc)
		if !ok {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD", nil)
		}
		day = parsed
	}

	start := utils.StartOfWeek(day)
	end := start.AddDate(0, 0, 6)

	rows, err := service.repo.GetCalendarRows(ctx, start.Format(constants.DateLayout), end.Format(constants.DateLayout), tutorID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get calendar", err)
	}

	days := make([]dto.WeekDay, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := start.AddDate(0, 0, i)
		key := d.Format(constants.DateLayout)
		days[i] = dto.WeekDay{Date: key, DayOfWeek: i + 1, Entries: []dto.CalendarEntry{}}
		index[key] = i
	}
	for _, row := range rows {
		if i, ok := index[row.Date]; ok {
			days[i].Entries = append(days[i].Entries, mapper.ToCalendarEntry(row, studentID))
		}
	}

	return &dto.WeekCalendarResponse{
		WeekStart: start.Format(constants.DateLayout),
		WeekEnd:   end.Format(constants.DateLayout),
		TutorID:   tutorID,
		Days:      days,
	}, nil
}
