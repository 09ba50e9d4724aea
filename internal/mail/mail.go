package mail

import (
	"bytes"
	"fmt"
	"io"

	"github.com/diewo77/backoffice/internal/config"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers outbound mail over SMTP.
type Sender struct {
	cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// SendInvoice mails the rendered invoice PDF to the given recipient.
// Delivery is best effort; callers report the error to the client but
// the invoice itself is unaffected.
func (s *Sender) SendInvoice(to, displayNumber, clientName string, pdf []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Invoice %s", displayNumber))
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nPlease find attached invoice %s.\n\nRegards", clientName, displayNumber))
	m.Attach(fmt.Sprintf("Invoice_%s.pdf", displayNumber), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(pdf))
		return err
	}))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		zap.S().Errorw("invoice mail failed", "to", to, "error", err)
		return err
	}
	zap.S().Infow("invoice mailed", "to", to, "invoice", displayNumber)
	return nil
}
