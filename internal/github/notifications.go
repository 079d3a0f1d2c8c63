package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/guerinoni/ghn/internal/model"
)

// ListNotifications fetches the default page of notification threads.
// With all=false GitHub returns unread threads only.
func (c *Client) ListNotifications(
	ctx context.Context,
	all bool,
) ([]model.Notification, error) {
	query := url.Values{}
	query.Set("all", strconv.FormatBool(all))

	var raw []rawNotification
	if err := c.Get(ctx, "/notifications", query, &raw); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	out := make([]model.Notification, len(raw))
	for i, r := range raw {
		out[i] = toNotification(r)
	}
	return out, nil
}

// MarkThreadRead marks a notification thread as read.
func (c *Client) MarkThreadRead(ctx context.Context, threadID string) error {
	if err := c.Patch(ctx, threadPath(threadID)); err != nil {
		return fmt.Errorf("marking thread %s read: %w", threadID, err)
	}
	return nil
}

// MarkThreadDone marks a notification thread as done, removing it from
// the inbox.
func (c *Client) MarkThreadDone(ctx context.Context, threadID string) error {
	if err := c.Delete(ctx, threadPath(threadID)); err != nil {
		return fmt.Errorf("marking thread %s done: %w", threadID, err)
	}
	return nil
}

func threadPath(threadID string) string {
	return "/notifications/threads/" + url.PathEscape(threadID)
}

// toNotification maps a wire thread into the display model. Null optional
// subject URLs become empty strings.
func toNotification(r rawNotification) model.Notification {
	n := model.Notification{
		ID:     r.ID,
		Unread: r.Unread,
		Reason: r.Reason,
		URL:    r.URL,
		Subject: model.Subject{
			Title:            r.Subject.Title,
			URL:              deref(r.Subject.URL),
			LatestCommentURL: deref(r.Subject.LatestCommentURL),
			Type:             r.Subject.Type,
		},
		Repository: model.Repository{
			Name:     r.Repository.Name,
			FullName: r.Repository.FullName,
			URL:      r.Repository.URL,
			HTMLURL:  r.Repository.HTMLURL,
		},
	}
	if r.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
			n.UpdatedAt = t
		}
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
