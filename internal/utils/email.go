package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
)

type SMTPCfg struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func loadSMTP() (*SMTPCfg, error) {
	cfg := &SMTPCfg{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: os.Getenv("SMTP_FROM"),
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.User == "" || cfg.Pass == "" || cfg.From == "" {
		return nil, fmt.Errorf("SMTP not configured")
	}
	return cfg, nil
}

// SendEmail delivers an interview invitation or notification over SMTP.
// Port 465 falls back to an implicit-TLS dial since SendMail only speaks
// STARTTLS.
func SendEmail(to, subject, body string) error {
	cfg, err := loadSMTP()
	if err != nil {
		return err
	}

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	msg := []byte("From: \"AI Interview Platform\" <" + cfg.From + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(addr, auth, cfg.From, []string{to}, msg); err != nil {
		if cfg.Port != "465" {
			return err
		}
		tlsconfig := &tls.Config{ServerName: cfg.Host}
		conn, cerr := tls.Dial("tcp", addr, tlsconfig)
		if cerr != nil {
			return cerr
		}
		client, cerr := smtp.NewClient(conn, cfg.Host)
		if cerr != nil {
			return cerr
		}
		defer client.Close()
		if cerr = client.Auth(auth); cerr != nil {
			return cerr
		}
		if cerr = client.Mail(cfg.From); cerr != nil {
			return cerr
		}
		if cerr = client.Rcpt(to); cerr != nil {
			return cerr
		}
		wc, cerr := client.Data()
		if cerr != nil {
			return cerr
		}
		if _, cerr = wc.Write(msg); cerr != nil {
			return cerr
		}
		if cerr = wc.Close(); cerr != nil {
			return cerr
		}
		return client.Quit()
	}
	return nil
}
