package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"classtime/core/queue"
	"classtime/modules/booking/entity"
	"classtime/modules/booking/repository"

	"github.com/lib/pq"
)

type memState struct {
	timeslots map[int64]entity.Timeslot
	bookings  map[int64]entity.Booking
	bases     map[string]int64
	cancelled map[[2]int64]bool
	nextID    int64
}

func (s memState) clone() memState {
	c := memState{
		timeslots: make(map[int64]entity.Timeslot, len(s.timeslots)),
		bookings:  make(map[int64]entity.Booking, len(s.bookings)),
		bases:     make(map[string]int64, len(s.bases)),
		cancelled: make(map[[2]int64]bool, len(s.cancelled)),
		nextID:    s.nextID,
	}
	for k, v := range s.timeslots {
		c.timeslots[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.bases {
		c.bases[k] = v
	}
	for k, v := range s.cancelled {
		c.cancelled[k] = v
	}
	return c
}

// fakeRepo keeps everything in memory. Transactions and savepoints restore a
// snapshot on error, the way PostgreSQL rolls back.
type fakeRepo struct {
	mu        sync.Mutex
	state     memState
	nicknames map[int64]string
	teaches   map[[2]int64]bool

	failInsertFor map[int64]bool
}

var _ repository.BookingRepositoryInterface = (*fakeRepo)(nil)
var _ repository.TxRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		state: memState{
			timeslots: map[int64]entity.Timeslot{},
			bookings:  map[int64]entity.Booking{},
			bases:     map[string]int64{},
			cancelled: map[[2]int64]bool{},
			nextID:    100,
		},
		nicknames:     map[int64]string{},
		teaches:       map[[2]int64]bool{},
		failInsertFor: map[int64]bool{},
	}
}

func (r *fakeRepo) id() int64 {
	r.state.nextID++
	return r.state.nextID
}

// addTimeslot stores an available single timeslot of the Wednesday 10:00 math
// pattern unless overridden.
func (r *fakeRepo) addTimeslot(id int64, date string, opts ...func(*entity.Timeslot)) {
	t := entity.Timeslot{
		TimeslotID:    id,
		TutorID:       1,
		CourseID:      1,
		Status:        "available",
		Repeatability: "single",
		Date:          date,
		DayOfWeek:     3,
		StartTime:     "10:00:00",
		EndTime:       "11:00:00",
		TutorName:     "Anna",
		TutorSurname:  "Ivanova",
		CourseName:    "Math",
	}
	for _, opt := range opts {
		opt(&t)
	}
	r.state.timeslots[id] = t
}

// addBooking stores a booking and marks its timeslot booked.
func (r *fakeRepo) addBooking(bookingID, studentID, timeslotID int64, repeatability string) {
	t := r.state.timeslots[timeslotID]
	t.Status = "booked"
	t.Repeatability = repeatability
	r.state.timeslots[timeslotID] = t
	r.state.bookings[bookingID] = entity.Booking{BookingID: bookingID, StudentID: studentID, TimeslotID: timeslotID, CourseID: t.CourseID}
}

func (r *fakeRepo) timeslot(id int64) entity.Timeslot {
	return r.state.timeslots[id]
}

func (r *fakeRepo) bookingOf(timeslotID int64) *entity.Booking {
	for _, b := range r.state.bookings {
		if b.TimeslotID == timeslotID {
			return &b
		}
	}
	return nil
}

func (r *fakeRepo) WithTx(_ context.Context, fn func(tx repository.TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.state.clone()
	if err := fn(r); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) Savepoint(_ context.Context, _ string, fn func() error) error {
	snapshot := r.state.clone()
	if err := fn(); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) GetMyBookings(_ context.Context, studentID int64) ([]entity.BookingDetail, error) {
	var rows []entity.BookingDetail
	for _, b := range r.state.bookings {
		if b.StudentID != studentID {
			continue
		}
		t := r.state.timeslots[b.TimeslotID]
		rows = append(rows, entity.BookingDetail{
			BookingID:     b.BookingID,
			BookingDate:   b.BookingDate,
			TimeslotID:    t.TimeslotID,
			TutorID:       t.TutorID,
			TutorName:     t.TutorName,
			TutorSurname:  t.TutorSurname,
			CourseName:    t.CourseName,
			Date:          t.Date,
			StartTime:     t.StartTime,
			EndTime:       t.EndTime,
			Repeatability: t.Repeatability,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].StartTime < rows[j].StartTime
	})
	return rows, nil
}

func (r *fakeRepo) GetTimeslot(_ context.Context, timeslotID int64) (*entity.Timeslot, error) {
	t, ok := r.state.timeslots[timeslotID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeRepo) sortedTimeslots() []entity.Timeslot {
	all := make([]entity.Timeslot, 0, len(r.state.timeslots))
	for _, t := range r.state.timeslots {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		return all[i].TimeslotID < all[j].TimeslotID
	})
	return all
}

func (r *fakeRepo) ListSweepCandidates(_ context.Context, fromDate string) ([]int64, error) {
	var ids []int64
	for _, t := range r.sortedTimeslots() {
		if t.Status != "available" || t.Date < fromDate {
			continue
		}
		pattern := t.Pattern()
		for _, b := range r.state.bookings {
			held := r.state.timeslots[b.TimeslotID]
			if r.state.cancelled[[2]int64{b.StudentID, t.TimeslotID}] {
				continue
			}
			if held.TimeslotID != t.TimeslotID && held.Repeatability == "repeated" && held.Date >= fromDate && pattern.Matches(&held) {
				ids = append(ids, t.TimeslotID)
				break
			}
		}
	}
	return ids, nil
}

func (r *fakeRepo) TutorTeachesCourse(_ context.Context, tutorID, courseID int64) (bool, error) {
	return r.teaches[[2]int64{tutorID, courseID}], nil
}

func (r *fakeRepo) LockTimeslot(ctx context.Context, timeslotID int64) (*entity.Timeslot, error) {
	return r.GetTimeslot(ctx, timeslotID)
}

func (r *fakeRepo) GetStudentBookingForTimeslot(_ context.Context, studentID, timeslotID int64) (*entity.Booking, error) {
	for _, b := range r.state.bookings {
		if b.StudentID == studentID && b.TimeslotID == timeslotID {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) InsertBooking(_ context.Context, booking *entity.Booking) error {
	if r.failInsertFor[booking.TimeslotID] {
		return fmt.Errorf("insert booking for timeslot %d: connection reset", booking.TimeslotID)
	}
	if r.bookingOf(booking.TimeslotID) != nil {
		return &pq.Error{Code: "23505", Constraint: "uq_booking_timeslot"}
	}
	booking.BookingID = r.id()
	booking.BookingDate = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.state.bookings[booking.BookingID] = *booking
	return nil
}

func (r *fakeRepo) SetTimeslotState(_ context.Context, timeslotID int64, status, repeatability string) error {
	t := r.state.timeslots[timeslotID]
	t.Status = status
	t.Repeatability = repeatability
	r.state.timeslots[timeslotID] = t
	return nil
}

func (r *fakeRepo) LockPropagationCandidates(_ context.Context, pattern entity.Pattern, studentID, excludeTimeslotID int64, fromDate string) ([]entity.Timeslot, error) {
	var rows []entity.Timeslot
	for _, t := range r.sortedTimeslots() {
		if !pattern.Matches(&t) || t.Status != "available" || t.Date < fromDate || t.TimeslotID == excludeTimeslotID {
			continue
		}
		if b, _ := r.GetStudentBookingForTimeslot(context.Background(), studentID, t.TimeslotID); b != nil {
			continue
		}
		if r.state.cancelled[[2]int64{studentID, t.TimeslotID}] {
			continue
		}
		rows = append(rows, t)
	}
	return rows, nil
}

func (r *fakeRepo) LockBooking(_ context.Context, bookingID, studentID int64) (*entity.Booking, error) {
	b, ok := r.state.bookings[bookingID]
	if !ok || b.StudentID != studentID {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeRepo) DeleteBooking(_ context.Context, bookingID int64) error {
	delete(r.state.bookings, bookingID)
	return nil
}

func (r *fakeRepo) RecordCancellation(_ context.Context, studentID, timeslotID int64) error {
	r.state.cancelled[[2]int64{studentID, timeslotID}] = true
	return nil
}

func (r *fakeRepo) ClearCancellation(_ context.Context, studentID, timeslotID int64) error {
	delete(r.state.cancelled, [2]int64{studentID, timeslotID})
	return nil
}

func (r *fakeRepo) ListRecurringBookings(_ context.Context, pattern entity.Pattern, studentID int64, fromDate string) ([]entity.RecurringBooking, error) {
	var rows []entity.RecurringBooking
	for _, t := range r.sortedTimeslots() {
		if !pattern.Matches(&t) || t.Repeatability != "repeated" || t.Date < fromDate {
			continue
		}
		if b := r.bookingOf(t.TimeslotID); b != nil && b.StudentID == studentID {
			rows = append(rows, entity.RecurringBooking{BookingID: b.BookingID, TimeslotID: t.TimeslotID, Date: t.Date})
		}
	}
	return rows, nil
}

func (r *fakeRepo) ListPatternHolders(_ context.Context, pattern entity.Pattern, excludeTimeslotID int64, fromDate string) ([]entity.PatternHolder, error) {
	type agg struct {
		first   int64
		maxDate string
	}
	holders := map[int64]*agg{}
	for _, b := range r.state.bookings {
		t := r.state.timeslots[b.TimeslotID]
		if !pattern.Matches(&t) || t.Repeatability != "repeated" || t.TimeslotID == excludeTimeslotID {
			continue
		}
		if r.state.cancelled[[2]int64{b.StudentID, excludeTimeslotID}] {
			continue
		}
		a, ok := holders[b.StudentID]
		if !ok {
			a = &agg{first: b.BookingID, maxDate: t.Date}
			holders[b.StudentID] = a
		}
		a.first = min(a.first, b.BookingID)
		a.maxDate = max(a.maxDate, t.Date)
	}

	var rows []entity.PatternHolder
	for studentID, a := range holders {
		if a.maxDate < fromDate {
			continue
		}
		holder := entity.PatternHolder{StudentID: studentID, FirstBookingID: a.first}
		if nick, ok := r.nicknames[studentID]; ok {
			holder.StudentNickname = &nick
		}
		rows = append(rows, holder)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].FirstBookingID < rows[j].FirstBookingID })
	return rows, nil
}

func (r *fakeRepo) GetOrCreateBaseTimeslot(_ context.Context, date string, _ int, startTime, endTime string) (int64, error) {
	key := date + "|" + startTime + "|" + endTime
	if id, ok := r.state.bases[key]; ok {
		return id, nil
	}
	id := r.id()
	r.state.bases[key] = id
	return id, nil
}

func (r *fakeRepo) InsertTimeslot(_ context.Context, timeslot *entity.Timeslot) error {
	timeslot.TimeslotID = r.id()
	stored := *timeslot
	stored.TutorName = "Anna"
	stored.TutorSurname = "Ivanova"
	stored.CourseName = "Math"
	r.state.timeslots[stored.TimeslotID] = stored
	return nil
}

type recordingEnqueuer struct {
	notices []queue.AutoBookingNotice
}

func (q *recordingEnqueuer) EnqueueAutoBookingNotice(_ context.Context, notice queue.AutoBookingNotice) error {
	q.notices = append(q.notices, notice)
	return nil
}
