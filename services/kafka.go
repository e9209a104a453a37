package services

import (
	"biometric_auth_ms/config"
	"biometric_auth_ms/dtos/request"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"
)

// IKafkaService publishes security and notification events for the auth
// subsystem. Consumers (mailer, audit trail) live in other services.
type IKafkaService interface {
	SendCredentialRegisteredEvent(event *request.CredentialRegisteredEvent) error
	SendReplaySuspectedEvent(event *request.ReplaySuspectedEvent) error
	SendLoginArtifactIssuedEvent(event *request.LoginArtifactIssuedEvent) error
}

type KafkaService struct {
}

func NewKafkaService() IKafkaService {
	return &KafkaService{}
}

func (k *KafkaService) SendCredentialRegisteredEvent(event *request.CredentialRegisteredEvent) error {
	return publish("CredentialRegisteredEvent", event)
}

func (k *KafkaService) SendReplaySuspectedEvent(event *request.ReplaySuspectedEvent) error {
	return publish("ReplaySuspectedEvent", event)
}

func (k *KafkaService) SendLoginArtifactIssuedEvent(event *request.LoginArtifactIssuedEvent) error {
	return publish("LoginArtifactIssuedEvent", event)
}

func publish(topic string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	producer, err := sarama.NewSyncProducer(config.Conf.Application.Kafka.Brokers, nil)
	if err != nil {
		log.Println("Failed to create sync producer:", err)
		return err
	}
	defer producer.Close()

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.StringEncoder(data),
	}
	partition, offset, err := producer.SendMessage(msg)
	if err != nil {
		log.Printf("Failed to send %s: %v", topic, err)
		return err
	}
	log.Printf("Sent %s to partition %d at offset %d", topic, partition, offset)
	return nil
}
