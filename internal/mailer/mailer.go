package mailer

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	// ErrMalformedMessage 和 ErrUnsupportedType 表示消息本身有问题，重新入队也无法处理
	ErrMalformedMessage = errors.New("malformed mail message")
	ErrUnsupportedType  = errors.New("unsupported mail type")
)

const welcomeSubject = "Employee Registry - Welcome aboard"

type Mailer struct {
	from    string
	welcome *template.Template
}

func New(from string) (*Mailer, error) {
	welcome, err := template.New("welcome_email.html").
		Funcs(template.FuncMap{"deref": func(s *string) string { return *s }}).
		ParseFS(templateFS, "templates/welcome_email.html")
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}

	return &Mailer{
		from:    from,
		welcome: welcome,
	}, nil
}

// Build 将消息队列中的消息体转换为待发送的邮件
func (m *Mailer) Build(body []byte) (*mail.Msg, error) {
	message := domain.MailMessage{}
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}

	// 正文较短且为 UTF-8，直接使用 8bit 编码
	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}

	switch message.Type {
	case domain.MailTypeEmployeeCreated:
		if err := msg.SetBodyHTMLTemplate(m.welcome, message.Data); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}
		msg.Subject(welcomeSubject)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, message.Type)
	}

	return msg, nil
}
