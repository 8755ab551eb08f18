// Package classifier calls the hosted language-model service that categorizes
// and scores grievances.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"grievance-service/internal/model"

	"github.com/avast/retry-go"
)

const (
	retryDelay      = 500 * time.Millisecond
	maxResponseSize = 1 << 20
)

type Client struct {
	endpoint   string
	apiKey     string
	model      string
	timeout    time.Duration
	retries    uint
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(endpoint, apiKey, modelName string, timeout time.Duration, retries uint, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      modelName,
		timeout:    timeout,
		retries:    retries,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classifyRequest struct {
	Model string `json:"model,omitempty"`
	model.ClassificationRequest
}

// classifyReply tells an absent urgencyScore apart from a score of 0.
type classifyReply struct {
	model.Classification
	UrgencyScore *int `json:"urgencyScore"`
}

// statusError marks a non-2xx reply; only 5xx and 429 are retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classifier returned %d: %s", e.code, e.body)
}

// Classify sends the grievance text and images and validates the reply. Any
// failure, including the timeout, is reported as model.ErrAnalysisFailed.
func (c *Client) Classify(ctx context.Context, req model.ClassificationRequest) (*model.Classification, error) {
	if len(req.Images) > model.MaxEvidence {
		return nil, model.ErrTooManyEvidence
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(classifyRequest{Model: c.model, ClassificationRequest: req})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", model.ErrAnalysisFailed, err)
	}

	var result *model.Classification
	err = retry.Do(
		func() error {
			cls, err := c.do(ctx, body)
			if err != nil {
				return err
			}
			result = cls
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("classifier: retry %d: %v", n+1, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAnalysisFailed, err)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, body []byte) (*model.Classification, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	var reply classifyReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, malformed(fmt.Errorf("decode response: %w", err))
	}
	if reply.UrgencyScore == nil {
		return nil, malformed(errors.New("missing urgency score"))
	}
	cls := reply.Classification
	cls.UrgencyScore = *reply.UrgencyScore
	if err := Validate(&cls); err != nil {
		return nil, malformed(err)
	}
	return &cls, nil
}

type malformedError struct{ err error }

func (e *malformedError) Error() string { return e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

func malformed(err error) error { return &malformedError{err: err} }

func retryable(err error) bool {
	var me *malformedError
	if errors.As(err, &me) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

// Validate checks the fields the triage core depends on and normalizes the
// priority to upper case.
func Validate(cls *model.Classification) error {
	cls.Priority = model.Priority(strings.ToUpper(strings.TrimSpace(string(cls.Priority))))
	if !cls.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", cls.Priority)
	}
	if cls.UrgencyScore < 0 || cls.UrgencyScore > 100 {
		return fmt.Errorf("urgency score %d out of range", cls.UrgencyScore)
	}
	if strings.TrimSpace(cls.Category) == "" {
		return errors.New("missing category")
	}
	if strings.TrimSpace(cls.Department) == "" {
		return errors.New("missing department")
	}
	return nil
}
