package tasks

import (
	"encoding/json"
	"time"

	"campstay/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingConfirmed = "booking:confirmed"
	TypeStayReminder     = "booking:reminder"
)

// DefaultQueue holds every booking task.
const DefaultQueue = "default"

// ReminderLead is how long before check-in the stay reminder fires.
const ReminderLead = 24 * time.Hour

func NewBookingConfirmedTask(n models.BookingNotice) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirmed, b)
	opts := []asynq.Option{
		asynq.TaskID(taskID(TypeBookingConfirmed, n)),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

func NewStayReminderTask(n models.BookingNotice, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeStayReminder, b)
	opts := []asynq.Option{
		asynq.TaskID(taskID(TypeStayReminder, n)),
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ParseNotice decodes the payload of either booking task.
func ParseNotice(t *asynq.Task) (models.BookingNotice, error) {
	var n models.BookingNotice
	err := json.Unmarshal(t.Payload(), &n)
	return n, err
}

func taskID(kind string, n models.BookingNotice) string {
	return kind + ":" + string(n.Source) + ":" + n.BookingID
}
