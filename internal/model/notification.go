package model

import (
	"fmt"
	"strings"
	"time"
)

// SubjectTypePullRequest is the subject type GitHub reports for pull
// request threads. Only these get comment deep links.
const SubjectTypePullRequest = "PullRequest"

// Notification is one entry of the GitHub notifications feed, normalized
// for display. The whole list is replaced on every fetch.
type Notification struct {
	// ID is the thread identifier used by the mark-read/done endpoints.
	ID string `json:"id"`

	// Unread reports whether the thread still has unread activity.
	Unread bool `json:"unread"`

	// Reason is why the user received the notification
	// (e.g., "review_requested", "mention", "subscribed").
	Reason string `json:"reason"`

	// URL is the API URL of the thread.
	URL string `json:"url"`

	// UpdatedAt is the last time the thread changed. Zero when unknown.
	UpdatedAt time.Time `json:"updated_at"`

	Subject    Subject    `json:"subject"`
	Repository Repository `json:"repository"`
}

// Subject is the issue, pull request, commit or release a notification
// refers to. Optional URLs are empty strings when GitHub omits them.
type Subject struct {
	Title            string `json:"title"`
	URL              string `json:"url"`
	LatestCommentURL string `json:"latest_comment_url"`
	Type             string `json:"type"`
}

// Repository identifies the repository a notification belongs to.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	URL      string `json:"url"`
	HTMLURL  string `json:"html_url"`
}

// WebURL returns the browser URL for the notification. Pull requests with a
// latest comment link straight to that comment; everything else falls back
// to the repository page.
func (n Notification) WebURL() string {
	if n.Subject.Type == SubjectTypePullRequest && n.Subject.LatestCommentURL != "" {
		pr := lastPathSegment(n.Subject.URL)
		comment := lastPathSegment(n.Subject.LatestCommentURL)
		if pr != "" && comment != "" {
			return fmt.Sprintf(
				"%s/pull/%s#issuecomment-%s",
				strings.TrimRight(n.Repository.HTMLURL, "/"), pr, comment,
			)
		}
	}
	return n.Repository.HTMLURL
}

// lastPathSegment returns the trailing path segment of a URL, ignoring a
// trailing slash.
func lastPathSegment(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// CountUnread returns how many notifications in the list are unread.
func CountUnread(notifications []Notification) int {
	n := 0
	for _, item := range notifications {
		if item.Unread {
			n++
		}
	}
	return n
}
