// Package mailer sends outbound HTML notifications through an HTTP mail
// API. Delivery is best-effort: a failed notification is logged, never
// fatal to the invocation that triggered it.
package mailer

import (
	"context"
	"fmt"
	"time"

	"takaful/pkg/types"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type HTTPMailer struct {
	httpClient *resty.Client
	from       string
	logger     *logrus.Logger
}

func NewHTTPMailer(baseURL, apiKey, from string, logger *logrus.Logger) *HTTPMailer {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil
		}).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &HTTPMailer{httpClient: httpClient, from: from, logger: logger}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return nil
	}

	resp, err := m.httpClient.R().
		SetContext(ctx).
		SetBody(sendRequest{From: m.from, To: to, Subject: subject, HTML: htmlBody}).
		Post("/send")
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	if resp.IsError() {
		return &types.ExternalServiceError{
			Service:    "mail",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}

	m.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("mail sent")
	return nil
}

// Recorder is a Mailer test double capturing sent messages.
type Recorder struct {
	Sent []RecordedMail
	Err  error
}

type RecordedMail struct {
	To      string
	Subject string
	HTML    string
}

func (r *Recorder) Send(ctx context.Context, to, subject, htmlBody string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, RecordedMail{To: to, Subject: subject, HTML: htmlBody})
	return nil
}
