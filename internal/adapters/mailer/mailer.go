// Package mailer delivers transactional mail over SMTP. Every send is
// best-effort: callers log failures and move on, a lost mail never fails the
// operation that produced it.
package mailer

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/ppetrovv/bisera/internal/domain"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv reads SMTP_HOST/SMTP_PORT/SMTP_USER/SMTP_PASS. With no host
// configured the mailer is nil and callers skip sending.
func NewFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

var statusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:   "приета",
	domain.OrderStatusConfirmed: "потвърдена",
	domain.OrderStatusCancelled: "отказана",
}

func (m *Mailer) SendOrderStatus(ctx context.Context, o *domain.Order) error {
	label, ok := statusLabels[o.Status]
	if !ok {
		label = string(o.Status)
	}
	subject := fmt.Sprintf("Поръчка %s е %s", shortID(o.ID.String()), label)
	body := fmt.Sprintf(
		"<p>Здравейте, %s!</p><p>Вашата поръчка <b>%s</b> е <b>%s</b>.</p><p>Обща сума: %.2f лв.</p>",
		o.Name, shortID(o.ID.String()), label, o.Total(),
	)
	return m.send(ctx, o.Email, subject, body)
}

func (m *Mailer) SendVerification(ctx context.Context, email, token string) error {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	body := fmt.Sprintf(
		"<p>Благодарим за регистрацията!</p><p>Потвърдете профила си от <a href=\"%s/verify/%s\">този линк</a>. Линкът е валиден 1 час.</p>",
		base, token,
	)
	return m.send(ctx, email, "Потвърдете профила си", body)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	body := fmt.Sprintf(
		"<p>Здравейте, %s!</p><p>Заявена е смяна на паролата. Продължете от <a href=\"%s\">този линк</a>. Линкът е валиден 1 час.</p><p>Ако не сте били вие, игнорирайте този имейл.</p>",
		name, resetURL,
	)
	return m.send(ctx, email, "Смяна на парола", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// gomail has no context support; run the dial in a goroutine so callers
	// can still bail out on ctx expiry.
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
