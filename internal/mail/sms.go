package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender posts messages to the SMS provider's REST API.
type SMSSender struct {
	ProviderURL string
	AccountID   string
	AuthToken   string
	Client      *http.Client
}

func (s *SMSSender) Send(ctx context.Context, toPhone, message string) error {
	form := url.Values{}
	form.Set("To", toPhone)
	form.Set("Body", message)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ProviderURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.AccountID, s.AuthToken)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned %s", resp.Status)
	}
	return nil
}
