package sagipero

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/notifications"})
	if err != nil {
		return nil, err
	}
	return decodeList[Notification](resp.Body)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.doNoBody(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read")
}

// Broadcast is a notification addressed to every user with a role.
type Broadcast struct {
	Role    string `json:"role"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (c *Client) SendNotification(ctx context.Context, b Broadcast) error {
	return c.doJSON(ctx, http.MethodPost, "/notifications/send", b, nil)
}

// SendTestPush pushes a test message to every registered device.
func (c *Client) SendTestPush(ctx context.Context, title, message string) error {
	return c.doJSON(ctx, http.MethodPost, "/notifications/test-push",
		map[string]any{"title": title, "message": message, "all": true}, nil)
}

// UnreadCount counts notifications not yet read.
func UnreadCount(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}

// PreviewArticle asks the backend to fetch and store an article preview.
func (c *Client) PreviewArticle(ctx context.Context, articleURL string) (*ArticlePreview, error) {
	var preview ArticlePreview
	if err := c.doJSON(ctx, http.MethodPost, "/articles", map[string]string{"url": articleURL}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}
