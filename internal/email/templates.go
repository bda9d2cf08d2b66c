package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Имена встроенных шаблонов.
const (
	TemplateCollaborationAccepted = "collaboration_accepted"
	TemplateCollaborationInvite   = "collaboration_invite"
)

var builtinTemplates = map[string]string{
	TemplateCollaborationAccepted: `<html><body>
<h2>Поздравляем, {{.InfluencerName}}!</h2>
<p>Бренд <b>{{.BrandName}}</b> принял вашу заявку на коллаборацию «{{.CollaborationName}}».</p>
<p>Откройте приложение - чат с брендом уже создан.</p>
</body></html>`,

	TemplateCollaborationInvite: `<html><body>
<h2>Новое приглашение</h2>
<p>Бренд <b>{{.BrandName}}</b> приглашает вас в коллаборацию «{{.CollaborationName}}».</p>
<p>Ответить на приглашение можно в приложении.</p>
</body></html>`,
}

// TemplateManager хранит распарсенные html-шаблоны писем.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с предзагруженными встроенными шаблонами.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range builtinTemplates {
		_ = tm.AddTemplate(name, body)
	}
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
