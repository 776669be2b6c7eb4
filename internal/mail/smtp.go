package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Sender 投递 HTML 邮件的网关。发送失败原样返回错误，由调用方决定日志与提示。
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPSender struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	if s.Host == "" || s.SenderEmail == "" {
		return fmt.Errorf("mail: smtp not configured")
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	msg := buildMessage(s.SenderName, s.SenderEmail, to, subject, htmlBody)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	// 465 走隐式 TLS，其余端口 STARTTLS
	if s.Port == 465 {
		return s.sendImplicitTLS(addr, auth, to, msg)
	}
	return s.sendStartTLS(addr, auth, to, msg)
}

func (s *SMTPSender) sendStartTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mail: dial: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	return s.submit(c, auth, to, msg)
}

func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer c.Close()
	return s.submit(c, auth, to, msg)
}

func (s *SMTPSender) submit(c *smtp.Client, auth smtp.Auth, to string, msg []byte) error {
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("mail: auth: %w", err)
			}
		}
	}
	if err := c.Mail(s.SenderEmail); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(senderName, senderEmail, to, subject, htmlBody string) []byte {
	from := senderEmail
	if senderName != "" {
		from = fmt.Sprintf("%s <%s>", senderName, senderEmail)
	}
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
