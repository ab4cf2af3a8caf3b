// Package mailer 封装 SMTP 邮件发送
// 用于共享与发布等通知事件的邮件投递
package mailer

import (
	"crypto/tls"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Config 邮件配置
type Config struct {
	Enable   bool   `yaml:"enable" default:"false"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"465"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// SkipVerify 跳过 TLS 证书校验（自建邮件服务时使用）
	SkipVerify bool `yaml:"skip-verify" default:"false"`
}

// Mailer SMTP 邮件发送器
type Mailer struct {
	config Config
	dialer *gomail.Dialer
}

func New(c Config) *Mailer {
	d := gomail.NewDialer(c.Host, c.Port, c.Username, c.Password)
	if c.SkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Mailer{config: c, dialer: d}
}

// IsEnabled 邮件功能是否开启
func (m *Mailer) IsEnabled() bool {
	return m.config.Enable && m.config.Host != ""
}

// Send 发送一封 HTML 邮件
func (m *Mailer) Send(to string, subject string, body string) error {
	if !m.IsEnabled() {
		return nil
	}

	msg := gomail.NewMessage()
	from := m.config.From
	if from == "" {
		from = m.config.Username
	}
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "mailer send failed")
	}
	return nil
}
