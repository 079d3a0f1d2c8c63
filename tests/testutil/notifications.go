package testutil

import (
	"fmt"

	"github.com/guerinoni/ghn/internal/model"
)

// Notification builds a display notification for a thread id with
// deterministic repository fields.
func Notification(id string, unread bool) model.Notification {
	return model.Notification{
		ID:     id,
		Unread: unread,
		Reason: "subscribed",
		URL:    "https://api.github.com/notifications/threads/" + id,
		Subject: model.Subject{
			Title: fmt.Sprintf("Thread %s", id),
			Type:  "Issue",
		},
		Repository: model.Repository{
			Name:     "b",
			FullName: "a/b",
			URL:      "https://api.github.com/repos/a/b",
			HTMLURL:  "https://github.com/a/b",
		},
	}
}

// PullRequestNotification builds a pull request notification whose latest
// comment is commentID.
func PullRequestNotification(id string, pr, commentID int) model.Notification {
	n := Notification(id, true)
	n.Reason = "review_requested"
	n.Subject.Type = model.SubjectTypePullRequest
	n.Subject.URL = fmt.Sprintf("https://api.github.com/repos/a/b/pulls/%d", pr)
	n.Subject.LatestCommentURL = fmt.Sprintf("https://api.github.com/repos/a/b/issues/comments/%d", commentID)
	return n
}
