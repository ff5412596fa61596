package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go-outlook-starter/core/config"
	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/logger"
)

// Client is the Microsoft Graph surface the rest of the application uses.
// Every call is one synchronous request with the caller's delegated token;
// there is no retry and no internal state.
type Client interface {
	GetProfile(ctx context.Context, accessToken string) (*Profile, error)
	GetDefaultCalendar(ctx context.Context, accessToken string) (*Calendar, error)
	CreateEvent(ctx context.Context, accessToken, calendarID string, event *Event) (*CreatedEvent, error)
	SendMail(ctx context.Context, accessToken string, message *Message) error
}

type Profile struct {
	ID                string `json:"id"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email prefers the mailbox address over the sign-in name.
func (p *Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

type Calendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type Event struct {
	Subject string           `json:"subject"`
	Body    *ItemBody        `json:"body,omitempty"`
	Start   DateTimeTimeZone `json:"start"`
	End     DateTimeTimeZone `json:"end"`
}

type CreatedEvent struct {
	ID      string `json:"id"`
	WebLink string `json:"webLink"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

type EmailAddress struct {
	Address string `json:"address"`
}

// FileAttachment is a Graph fileAttachment; ContentBytes is base64.
type FileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentBytes string `json:"contentBytes"`
}

type Message struct {
	Subject      string           `json:"subject"`
	Body         ItemBody         `json:"body"`
	ToRecipients []Recipient      `json:"toRecipients"`
	Attachments  []FileAttachment `json:"attachments,omitempty"`
}

type graphClient struct {
	basePath   string
	httpClient *http.Client
}

func NewClient(cfg config.MicrosoftConfig) Client {
	return &graphClient{
		basePath:   cfg.BasePath,
		httpClient: &http.Client{Timeout: constants.DefaultTimeout},
	}
}

func (c *graphClient) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/me", accessToken, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *graphClient) GetDefaultCalendar(ctx context.Context, accessToken string) (*Calendar, error) {
	var calendar Calendar
	if err := c.doJSON(ctx, http.MethodGet, "/me/calendar", accessToken, nil, &calendar); err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (c *graphClient) CreateEvent(ctx context.Context, accessToken, calendarID string, event *Event) (*CreatedEvent, error) {
	path := "/me/calendar/events"
	if calendarID != "" {
		path = "/me/calendars/" + calendarID + "/events"
	}

	var created CreatedEvent
	if err := c.doJSON(ctx, http.MethodPost, path, accessToken, event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *graphClient) SendMail(ctx context.Context, accessToken string, message *Message) error {
	payload := map[string]any{
		"message":         message,
		"saveToSentItems": true,
	}
	// sendMail answers 202 Accepted with an empty body.
	return c.doJSON(ctx, http.MethodPost, "/me/sendMail", accessToken, payload, nil)
}

func (c *graphClient) doJSON(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.basePath+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("GraphClient:Request:Error", "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		logger.Error("GraphClient:APIError", "method", method, "path", path,
			"status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("graph API error: %s %s returned %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
