// Package events はアカウントイベントをKafkaへ送信するパブリッシャーを提供します。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"screenshot_backend/internal/feature/auth/domain/entity"
	"screenshot_backend/internal/feature/auth/usecase"
)

const (
	// DefaultTopic はトピック未指定時の送信先です。
	DefaultTopic = "account-events"

	writeTimeout   = 10 * time.Second
	publishTimeout = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher はアカウントイベントをJSONでKafkaに送信します。キーはユーザーIDです。
type KafkaPublisher struct {
	writer messageWriter
}

var _ usecase.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher は broker が空の場合、何も送信しないパブリッシャーを返します。
func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	if broker == "" {
		return &KafkaPublisher{}
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
			// 送信はバックグラウンドで行い、リクエストの応答時間に影響させない
			Async:      true,
			Completion: logFailedWrites,
		},
	}
}

// logFailedWrites は非同期送信の結果を受け取り、失敗をログに残します。
func logFailedWrites(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		slog.Warn("account event delivery failed", "topic", m.Topic, "key", string(m.Key), "error", err)
	}
}

// Enabled reports whether a broker is configured.
func (p *KafkaPublisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish は1件のイベントを送信キューに積みます。
// 呼び出し元のキャンセルとは切り離し、publishTimeout で上限を設けます。
func (p *KafkaPublisher) Publish(ctx context.Context, event entity.AccountEvent) error {
	// Kafka が未設定なら送信しない（登録やログインは失敗させない）
	if !p.Enabled() {
		slog.Debug("kafka publisher not configured, skip publish", "type", event.Type)
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal account event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close はライターを閉じます。
func (p *KafkaPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
