package app

import (
	"context"
	"sync"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/push"
)

// MockEmailProvider используется для тестов и локальной разработки.
type MockEmailProvider struct {
	mu   sync.Mutex
	Sent []*email.Email
}

func (m *MockEmailProvider) Send(msg *email.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, &email.Email{To: to, Subject: subject})
	return nil
}

func (m *MockEmailProvider) Validate() error { return nil }

// MockPushProvider запоминает отправленные push-сообщения.
type MockPushProvider struct {
	mu   sync.Mutex
	Sent []*push.Message
}

func (m *MockPushProvider) Send(ctx context.Context, msg *push.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}
