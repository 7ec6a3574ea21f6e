package tasks

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/optifeed/optifeed/internal/models"
)

const (
	// TASKS_TOPIC is the one durable queue every task flows through.
	TASKS_TOPIC = "tasks"

	publishFlushTimeout = 5 * time.Second
)

type BrokerConfig struct {
	Broker  string
	GroupID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func GetBrokerConfig() BrokerConfig {
	return BrokerConfig{
		Broker:  getEnv("KAFKA_BROKER", "localhost:29092"),
		GroupID: getEnv("KAFKA_CONSUMER_GROUP_ID", "optifeed-worker-group"),
	}
}

// Publish hands one task to the broker: a fresh producer per call, persisted
// delivery, then teardown. Fire-and-forget: failures are logged and swallowed,
// callers get no success signal.
func Publish(task models.Task) {
	jsonData, err := json.Marshal(task)
	if err != nil {
		slog.Error("[TaskPublisher] Failed to serialize task",
			slog.String("type", task.Type),
			slog.String("error", err.Error()))
		return
	}

	cfg := GetBrokerConfig()
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"acks":                "all",
	})
	if err != nil {
		slog.Error("[TaskPublisher] Failed to create producer",
			slog.String("error", err.Error()))
		return
	}
	defer producer.Close()

	topic := TASKS_TOPIC
	deliveryChan := make(chan kafka.Event, 1)
	err = producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          jsonData,
	}, deliveryChan)
	if err != nil {
		slog.Error("[TaskPublisher] Failed to produce task",
			slog.String("type", task.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case event := <-deliveryChan:
		if msg, ok := event.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
			slog.Error("[TaskPublisher] Task delivery failed",
				slog.String("type", task.Type),
				slog.String("error", msg.TopicPartition.Error.Error()))
			return
		}
	case <-time.After(publishFlushTimeout):
		slog.Warn("[TaskPublisher] Timed out awaiting delivery report",
			slog.String("type", task.Type))
		return
	}

	slog.Debug("[TaskPublisher] Published task",
		slog.String("type", task.Type))
}
