package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendTemplate рендерит именованный шаблон и отправляет письмо
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	// Validate проверяет конфигурацию провайдера
	Validate() error
}

// NoopProvider используется, когда SMTP не сконфигурирован:
// письма молча не отправляются.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider { return &NoopProvider{} }

func (p *NoopProvider) Send(email *Email) error { return nil }

func (p *NoopProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return nil
}

func (p *NoopProvider) Validate() error { return nil }
