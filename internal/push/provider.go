package push

import "context"

// Message - одно push-уведомление для одного устройства.
type Message struct {
	Token string            // FCM registration token устройства
	Title string
	Body  string
	Data  map[string]string // дополнительный payload для клиента
}

// Provider определяет интерфейс для отправки push-уведомлений.
// Отправка выполняется после коммита транзакции и не влияет на её исход.
type Provider interface {
	Send(ctx context.Context, msg *Message) error
}

// NoopProvider используется, когда push отключен в конфигурации.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider { return &NoopProvider{} }

func (p *NoopProvider) Send(ctx context.Context, msg *Message) error { return nil }
