package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// implicitTLSPort is the SMTPS port; other ports upgrade with STARTTLS when offered.
const implicitTLSPort = 465

// SMTPConfig holds the mail server settings and the maintainer addresses.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

type sendFunc func(ctx context.Context, from, to string, msg []byte) error

// SMTPNotifier emails every recipient a summary of the new review.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger zerolog.Logger
	send   sendFunc
}

// NewSMTPNotifier creates an email notifier.
func NewSMTPNotifier(cfg SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	if cfg.Port == 0 {
		cfg.Port = implicitTLSPort
	}
	n := &SMTPNotifier{cfg: cfg, logger: logger}
	n.send = n.deliver
	return n
}

// Enabled reports whether host and user credentials are configured.
func (n *SMTPNotifier) Enabled() bool {
	return n.cfg.Host != "" && n.cfg.Username != ""
}

// Notify sends one message per recipient and keeps going after a failure.
// Failed recipients are returned together as a *domain.NotifyError.
func (n *SMTPNotifier) Notify(ctx context.Context, review domain.Review) error {
	if !n.Enabled() {
		n.logger.Error().Msg("SMTP credentials missing in environment; review email skipped")
		return nil
	}
	if len(n.cfg.Recipients) == 0 {
		n.logger.Warn().Msg("no review email recipients configured")
		return nil
	}

	from, err := envelopeAddress(n.cfg.From)
	if err != nil {
		return &domain.NotifyError{Channel: "smtp", Err: err}
	}

	var errs []error
	for _, to := range n.cfg.Recipients {
		msg, err := buildReviewEmail(n.cfg.From, to, review)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		if err := n.send(ctx, from, to, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		n.logger.Info().Str("to", to).Str("review_id", review.ID).Msg("review email sent")
	}

	if len(errs) > 0 {
		return &domain.NotifyError{
			Channel: "smtp",
			Err:     &attemptsError{attempts: len(n.cfg.Recipients), err: errors.Join(errs...)},
		}
	}
	return nil
}

func (n *SMTPNotifier) deliver(ctx context.Context, from, to string, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	tlsConfig := &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{}
	var conn net.Conn
	var err error
	if n.cfg.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if n.cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return client.Quit()
}

func envelopeAddress(header string) (string, error) {
	addr, err := mail.ParseAddress(header)
	if err != nil {
		return "", fmt.Errorf("parse sender %q: %w", header, err)
	}
	return addr.Address, nil
}

var reviewHTML = template.Must(template.New("review").Parse(`<h2>New Review Received</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Rating:</strong> {{.Rating}}/5 stars</p>
<blockquote style="background: #f9f9f9; padding: 10px; border-left: 5px solid #ccc;">
  "{{.Comment}}"
</blockquote>
`))

func reviewSubject(review domain.Review) string {
	return fmt.Sprintf("New Review: %d Stars from %s", review.Rating, review.Name)
}

func reviewText(review domain.Review) string {
	return fmt.Sprintf("You have received a new review:\n\nName: %s\nRating: %d/5\n\n\"%s\"\n", review.Name, review.Rating, review.Comment)
}

// buildReviewEmail renders a multipart/alternative message with text and HTML parts.
func buildReviewEmail(from, to string, review domain.Review) ([]byte, error) {
	var htmlBody bytes.Buffer
	if err := reviewHTML.Execute(&htmlBody, review); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", reviewText(review)},
		{"text/html; charset=utf-8", htmlBody.String()},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", reviewSubject(review)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
