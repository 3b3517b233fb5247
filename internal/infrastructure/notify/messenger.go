package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// Message formats understood by the messenger gateway destinations.
const (
	FormatDiscord = "discord"
	FormatSlack   = "slack"
)

// MessengerDestination is one gateway destination, tried in order.
type MessengerDestination struct {
	Name     string
	Format   string
	Attempts int
	Delay    time.Duration
}

// MessengerConfig configures the messenger gateway channel.
type MessengerConfig struct {
	Endpoint     string
	Destinations []MessengerDestination
	ReviewsURL   string
}

// MessengerNotifier posts review summaries to the messenger gateway.
// Destinations are fallbacks: the first one that accepts the message wins.
type MessengerNotifier struct {
	client       *http.Client
	endpoint     string
	destinations []MessengerDestination
	reviewsURL   string
	logger       zerolog.Logger
}

// NewMessengerNotifier creates a gateway notifier. Destinations with an empty
// name are dropped.
func NewMessengerNotifier(cfg MessengerConfig, client *http.Client, logger zerolog.Logger) *MessengerNotifier {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	dests := make([]MessengerDestination, 0, len(cfg.Destinations))
	for _, d := range cfg.Destinations {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if d.Attempts < 1 {
			d.Attempts = 1
		}
		dests = append(dests, d)
	}
	return &MessengerNotifier{
		client:       client,
		endpoint:     strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		destinations: dests,
		reviewsURL:   strings.TrimSpace(cfg.ReviewsURL),
		logger:       logger,
	}
}

// Enabled reports whether a gateway endpoint and at least one destination are set.
func (n *MessengerNotifier) Enabled() bool {
	return n.endpoint != "" && len(n.destinations) > 0
}

func (n *MessengerNotifier) Notify(ctx context.Context, review domain.Review) error {
	if !n.Enabled() {
		return nil
	}

	var errs []error
	attempts := 0
	for _, dest := range n.destinations {
		text := buildMessengerText(dest.Format, n.reviewsURL, review)
		err := n.sendWithRetry(ctx, dest, review.ID, text)
		attempts += dest.Attempts
		if err == nil {
			return nil
		}
		n.logger.Warn().Err(err).Str("destination", dest.Name).Msg("messenger notification failed")
		errs = append(errs, fmt.Errorf("%s: %w", dest.Name, err))
	}

	return &domain.NotifyError{
		Channel: "messenger",
		Err:     &attemptsError{attempts: attempts, err: errors.Join(errs...)},
	}
}

func (n *MessengerNotifier) sendWithRetry(ctx context.Context, dest MessengerDestination, userID, text string) error {
	var lastErr error
	for i := 0; i < dest.Attempts; i++ {
		if i > 0 && dest.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(dest.Delay):
			}
		}
		if lastErr = n.send(ctx, dest.Name, userID, text); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (n *MessengerNotifier) send(ctx context.Context, destination, userID, text string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("userID is required")
	}

	body, err := json.Marshal(map[string]any{
		"userId":      userID,
		"text":        text,
		"destination": destination,
	})
	if err != nil {
		return fmt.Errorf("build messenger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build messenger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("messenger gateway error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

func buildMessengerText(format, reviewsURL string, review domain.Review) string {
	var b strings.Builder
	switch format {
	case FormatSlack:
		b.WriteString(fmt.Sprintf(":books: %s left a new review.\n", review.Name))
		b.WriteString(fmt.Sprintf("Rating: %s (%d / 5)\n", stars(review.Rating), review.Rating))
		b.WriteString(fmt.Sprintf("Comment: %s\n", review.Comment))
		if reviewsURL != "" {
			b.WriteString(fmt.Sprintf("Reviews: %s\n", reviewsURL))
		}
	default:
		b.WriteString(fmt.Sprintf("**%s** left a new review.\n", review.Name))
		b.WriteString(fmt.Sprintf("- Rating: %s (%d / 5)\n", stars(review.Rating), review.Rating))
		b.WriteString(fmt.Sprintf("- Comment: %s\n", review.Comment))
		if reviewsURL != "" {
			b.WriteString(fmt.Sprintf("[See all reviews](%s)\n", reviewsURL))
		}
	}
	return b.String()
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > domain.MaxRating {
		rating = domain.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}
