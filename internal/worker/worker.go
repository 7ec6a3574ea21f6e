package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/optifeed/optifeed/config"
	"github.com/optifeed/optifeed/internal/analysis"
	"github.com/optifeed/optifeed/internal/models"
	"github.com/optifeed/optifeed/internal/tasks"
)

// State tracks the worker's position in its connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConsuming
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConsuming:
		return "consuming"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	CONNECT_MAX_ATTEMPTS = 15
	CONNECT_RETRY_DELAY  = 3 * time.Second

	readPollTimeout = time.Second
)

// ErrConnectExhausted is fatal: the process should exit rather than hang.
var ErrConnectExhausted = errors.New("[Worker] broker connection attempts exhausted")

// ChatSender is the chat transport boundary; failures come back as values.
type ChatSender interface {
	SendMessage(text string, parseMode string) models.SendResult
}

// brokerConn is the slice of the Kafka consumer API the worker uses.
// *kafka.Consumer satisfies it.
type brokerConn interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error)
	Close() error
}

// Worker consumes tasks one at a time: decode, route, ack, repeat. Processing
// never parallelizes within one instance; scale-out means more processes on
// the same group.
type Worker struct {
	cfg       tasks.BrokerConfig
	contexts  ContextStore
	generator analysis.Generator
	chat      ChatSender

	botMention  string
	adminUserID int64

	state State

	// Injectable for tests.
	connect func(cfg tasks.BrokerConfig) (brokerConn, error)
	sleep   func(d time.Duration)
}

func New(contexts ContextStore, generator analysis.Generator, chat ChatSender) *Worker {
	return &Worker{
		cfg:         tasks.GetBrokerConfig(),
		contexts:    contexts,
		generator:   generator,
		chat:        chat,
		botMention:  config.GetEnv("TELEGRAM_BOT_USERNAME", "@optifeed_bot"),
		adminUserID: int64(config.GetEnvInt("ADMIN_USER", 0)),
		state:       StateDisconnected,
		connect:     connectKafka,
		sleep:       time.Sleep,
	}
}

func connectKafka(cfg tasks.BrokerConfig) (brokerConn, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"group.id":            cfg.GroupID,
		"auto.offset.reset":   "earliest",
		"enable.auto.commit":  false,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
	})
	if err != nil {
		return nil, err
	}
	if err := consumer.SubscribeTopics([]string{tasks.TASKS_TOPIC}, nil); err != nil {
		consumer.Close()
		return nil, err
	}
	return consumer, nil
}

func (w *Worker) State() State { return w.state }

// establishConnection walks DISCONNECTED -> CONNECTING -> CONSUMING, with a
// fixed retry budget. Exhaustion is fatal, not a silent hang.
func (w *Worker) establishConnection() (brokerConn, error) {
	w.state = StateConnecting
	for attempt := 1; attempt <= CONNECT_MAX_ATTEMPTS; attempt++ {
		slog.Info("[Worker] Trying to connect to broker...",
			slog.String("broker", w.cfg.Broker),
			slog.Int("attempt", attempt))

		conn, err := w.connect(w.cfg)
		if err == nil {
			slog.Info("[Worker] Connected to broker")
			w.state = StateConsuming
			return conn, nil
		}

		slog.Warn("[Worker] Connection failed, retrying in 3s...",
			slog.String("error", err.Error()))
		w.sleep(CONNECT_RETRY_DELAY)
	}

	w.state = StateFailed
	return nil, ErrConnectExhausted
}

// Run blocks consuming tasks until ctx is cancelled or the connection retry
// budget is exhausted.
func (w *Worker) Run(ctx context.Context) error {
	conn, err := w.establishConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("[Worker] Worker started. Waiting for tasks...")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[Worker] Context cancelled, shutting down")
			return nil
		default:
		}

		msg, err := conn.ReadMessage(readPollTimeout)
		if err != nil {
			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) {
				if kafkaErr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kafkaErr.Code() == kafka.ErrAllBrokersDown || kafkaErr.IsFatal() {
					slog.Error("[Worker] Broker connection lost, reconnecting...",
						slog.String("error", kafkaErr.Error()))
					conn.Close()
					w.state = StateDisconnected
					conn, err = w.establishConnection()
					if err != nil {
						return err
					}
					continue
				}
			}
			slog.Warn("[Worker] Failed to read message",
				slog.String("error", err.Error()))
			continue
		}

		w.handleMessage(ctx, conn, msg)
	}
}

// handleMessage decodes and processes one delivery, then always acks.
// Malformed payloads and processing errors are logged and discarded so one
// bad task can never wedge the queue.
func (w *Worker) handleMessage(ctx context.Context, conn brokerConn, msg *kafka.Message) {
	defer func() {
		if _, err := conn.CommitMessage(msg); err != nil {
			slog.Warn("[Worker] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}()

	var task models.Task
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		slog.Error("[Worker] Failed to decode task",
			slog.String("error", err.Error()))
		return
	}

	w.processTask(ctx, task)
}
