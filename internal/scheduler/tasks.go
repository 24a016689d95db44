package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDailyGeneration = "tasks.generate_daily"

const TaskNotificationOutboxDue = "notification.outbox.due"

type DailyGenerationPayload struct {
	HotelID  int64  `json:"hotelId"`
	TaskDate string `json:"taskDate"`
}

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
	HotelID  int64  `json:"hotelId"`
}

func NewDailyGenerationTask(payload DailyGenerationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyGeneration, data), nil
}

func ParseDailyGenerationPayload(task *asynq.Task) (DailyGenerationPayload, error) {
	var payload DailyGenerationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DailyGenerationPayload{}, err
	}
	return payload, nil
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}
