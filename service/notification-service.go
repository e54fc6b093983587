package service

import (
	"context"
	"encoding/json"
	"strconv"

	"fedman/config"
	"fedman/repository"

	"github.com/segmentio/kafka-go"
)

// SubmissionEvent is the lifecycle payload handed to the notification
// collaborator. Delivery to the athlete is not this core's business.
type SubmissionEvent struct {
	SubmissionId int                         `json:"submission_id"`
	AthleteId    int                         `json:"athlete_id"`
	NewStatus    repository.SubmissionStatus `json:"new_status"`
	Notes        string                      `json:"notes"`
}

type Notifier interface {
	NotifySubmission(event *SubmissionEvent) error
}

type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier() (*KafkaNotifier, error) {
	writer, err := config.NewNotificationWriter()
	if err != nil {
		return nil, err
	}
	return &KafkaNotifier{writer: writer}, nil
}

func (n *KafkaNotifier) NotifySubmission(event *SubmissionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(strconv.Itoa(event.SubmissionId)),
		Value: value,
	})
}
