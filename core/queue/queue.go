package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classtime/core/config"
	"classtime/core/logger"

	"github.com/hibiken/asynq"
)

const (
	TypeAutoBookingNotice = "notification:auto_booking"

	queueDefault = "default"
	maxRetry     = 5
)

// AutoBookingNotice tells a student that a booking was made on their behalf.
type AutoBookingNotice struct {
	StudentID  int64  `json:"student_id"`
	BookingID  int64  `json:"booking_id"`
	TimeslotID int64  `json:"timeslot_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TutorName  string `json:"tutor_name"`
	CourseName string `json:"course_name"`
}

type Enqueuer interface {
	EnqueueAutoBookingNotice(ctx context.Context, notice AutoBookingNotice) error
}

// AutoBookingNoticeHandler consumes auto-booking notices.
type AutoBookingNoticeHandler interface {
	HandleAutoBookingNotice(ctx context.Context, notice AutoBookingNotice) error
}

func NewAutoBookingNoticeTask(notice AutoBookingNotice) (*asynq.Task, error) {
	payload, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAutoBookingNotice, payload, asynq.MaxRetry(maxRetry), asynq.Queue(queueDefault)), nil
}

func ParseAutoBookingNotice(task *asynq.Task) (AutoBookingNotice, error) {
	var notice AutoBookingNotice
	if err := json.Unmarshal(task.Payload(), &notice); err != nil {
		return notice, fmt.Errorf("%s payload: %w", TypeAutoBookingNotice, asynq.SkipRetry)
	}
	return notice, nil
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

type Client struct {
	client *asynq.Client
}

func NewClient(opt asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

func (c *Client) EnqueueAutoBookingNotice(ctx context.Context, notice AutoBookingNotice) error {
	task, err := NewAutoBookingNoticeTask(notice)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logger.Info("Queue:Enqueue", "type", task.Type(), "task_id", info.ID, "student_id", notice.StudentID)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// InlineEnqueuer hands notices straight to the handler. Used when no Redis is
// configured.
type InlineEnqueuer struct {
	Handler AutoBookingNoticeHandler
}

func (q InlineEnqueuer) EnqueueAutoBookingNotice(ctx context.Context, notice AutoBookingNotice) error {
	return q.Handler.HandleAutoBookingNotice(ctx, notice)
}

type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(opt asynq.RedisConnOpt, handler AutoBookingNoticeHandler) *Server {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{queueDefault: 1},
		RetryDelayFunc: func(n int, err error, t *asynq.Task) time.Duration {
			return time.Duration(n*n+1) * time.Second
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Task:Error", "type", task.Type(), "error", err)
		}),
		Logger: asynqLogger{},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAutoBookingNotice, func(ctx context.Context, task *asynq.Task) error {
		notice, err := ParseAutoBookingNotice(task)
		if err != nil {
			return err
		}
		return handler.HandleAutoBookingNotice(ctx, notice)
	})

	return &Server{srv: srv, mux: mux}
}

func (s *Server) Start() error {
	return s.srv.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("Queue", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info("Queue", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("Queue", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error("Queue", "detail", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { logger.Error("Queue:Fatal", "detail", fmt.Sprint(args...)) }
