// Package moodle is a client for the Moodle REST web service functions the
// feedback export needs.
package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const defaultTimeout = 30 * time.Second

// Web service functions. mod_feedback_get_analysis is deliberately absent: it
// does not separate anonymous attempts and is useless for anonymous feedbacks.
const (
	FunctionCoursesByField     = "core_course_get_courses_by_field"
	FunctionFeedbacksByCourses = "mod_feedback_get_feedbacks_by_courses"
	FunctionResponsesAnalysis  = "mod_feedback_get_responses_analysis"
)

// Client calls the Moodle REST endpoint with a web service token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d}
	}
}

// NewClient creates a client for the REST endpoint at baseURL, normally
// https://<site>/webservice/rest/server.php.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("moodle endpoint URL is required")
	}
	if token == "" {
		return nil, fmt.Errorf("moodle web service token is required")
	}
	c := &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CoursesByCategory lists every course in the given category.
func (c *Client) CoursesByCategory(ctx context.Context, categoryID string) ([]Course, error) {
	params := url.Values{
		"field": {"category"},
		"value": {categoryID},
	}

	var resp struct {
		Courses []Course `json:"courses"`
	}
	if err := c.call(ctx, FunctionCoursesByField, params, coursesSchema, &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

// FeedbacksByCourses lists the feedback activities of the given courses in a
// single call. Callers must not pass an empty list: the web service then
// answers with every course the token's user can see.
func (c *Client) FeedbacksByCourses(ctx context.Context, courseIDs []string) ([]Feedback, error) {
	var resp struct {
		Feedbacks []Feedback `json:"feedbacks"`
	}
	if err := c.call(ctx, FunctionFeedbacksByCourses, IndexedParams("courseids", courseIDs), feedbacksSchema, &resp); err != nil {
		return nil, err
	}
	slog.Debug("feedbacks listed", "courses", len(courseIDs), "feedbacks", len(resp.Feedbacks))
	return resp.Feedbacks, nil
}

// ResponsesAnalysis fetches all attempts of one feedback, with named and
// anonymous attempts kept apart.
func (c *Client) ResponsesAnalysis(ctx context.Context, feedbackID int) (*Analysis, error) {
	params := url.Values{
		"feedbackid": {strconv.Itoa(feedbackID)},
	}

	var resp Analysis
	if err := c.call(ctx, FunctionResponsesAnalysis, params, analysisSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IndexedParams encodes values as name[0]=…, name[1]=…. The web service
// rejects comma-joined or repeated parameters for list arguments.
func IndexedParams(name string, values []string) url.Values {
	params := make(url.Values, len(values))
	for i, v := range values {
		params.Set(fmt.Sprintf("%s[%d]", name, i), v)
	}
	return params
}

// envelope holds the fields every function may return besides its payload.
type envelope struct {
	Exception string    `json:"exception"`
	ErrorCode string    `json:"errorcode"`
	Message   string    `json:"message"`
	Warnings  []Warning `json:"warnings"`
}

func (c *Client) call(ctx context.Context, function string, params url.Values, schema *gojsonschema.Schema, out any) error {
	reqURL, err := c.requestURL(function, params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("calling moodle", "function", function)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("moodle %s: send request: %w", function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("moodle %s: read response: %w", function, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Function:   function,
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       string(body),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Exception != "" || env.ErrorCode != "" {
			return &ExceptionError{
				Function:  function,
				Exception: env.Exception,
				ErrorCode: env.ErrorCode,
				Message:   env.Message,
			}
		}
		for _, w := range env.Warnings {
			slog.Warn("moodle warning",
				"function", function,
				"item", w.Item,
				"item_id", w.ItemID,
				"code", w.WarningCode,
				"message", w.Message,
			)
		}
	}

	if err := validate(function, schema, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("moodle %s: unmarshal response: %w", function, err)
	}
	return nil
}

func (c *Client) requestURL(function string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid moodle endpoint URL: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("wstoken", c.token)
	q.Set("wsfunction", function)
	q.Set("moodlewsrestformat", "json")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
