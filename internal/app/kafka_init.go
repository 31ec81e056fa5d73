package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// publishers — куда outbox worker отправляет события.
type publishers struct {
	main     domain.OutboxPublisher
	dlq      domain.OutboxPublisher
	producer *kafka.Producer
}

// initPublishers подключает Kafka, если заданы брокеры. При ошибке подключения
// витрина продолжает работу, а события пишутся в лог.
func initPublishers(cfg Config, logger *log.Entry) publishers {
	fallback := publishers{main: outbox.NewLogPublisher(logger.WithField("publisher", "log"))}
	if len(cfg.KafkaBrokers) == 0 {
		return fallback
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, version.ClientID("storefront"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing with log publisher")
		return fallback
	}

	logger.WithFields(log.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("kafka producer initialized")
	return publishers{
		main:     kafka.NewOutboxPublisher(producer, cfg.KafkaTopic),
		dlq:      kafka.NewDLQPublisher(producer),
		producer: producer,
	}
}

// closeKafkaProducer закрывает producer, если он был создан.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
