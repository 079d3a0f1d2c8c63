package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotification_WebURL(t *testing.T) {
	repo := Repository{
		Name:     "b",
		FullName: "a/b",
		HTMLURL:  "https://github.com/a/b",
	}

	tests := []struct {
		name    string
		subject Subject
		want    string
	}{
		{
			name: "pull request with latest comment",
			subject: Subject{
				Title:            "Fix bug",
				URL:              "https://api.github.com/repos/a/b/pulls/42",
				LatestCommentURL: "https://api.github.com/repos/a/b/issues/comments/99",
				Type:             SubjectTypePullRequest,
			},
			want: "https://github.com/a/b/pull/42#issuecomment-99",
		},
		{
			name: "pull request without latest comment",
			subject: Subject{
				URL:  "https://api.github.com/repos/a/b/pulls/42",
				Type: SubjectTypePullRequest,
			},
			want: "https://github.com/a/b",
		},
		{
			name: "issue with latest comment",
			subject: Subject{
				URL:              "https://api.github.com/repos/a/b/issues/7",
				LatestCommentURL: "https://api.github.com/repos/a/b/issues/comments/3",
				Type:             "Issue",
			},
			want: "https://github.com/a/b",
		},
		{
			name: "release",
			subject: Subject{
				Type: "Release",
			},
			want: "https://github.com/a/b",
		},
		{
			name: "pull request with trailing slashes",
			subject: Subject{
				URL:              "https://api.github.com/repos/a/b/pulls/5/",
				LatestCommentURL: "https://api.github.com/repos/a/b/issues/comments/6/",
				Type:             SubjectTypePullRequest,
			},
			want: "https://github.com/a/b/pull/5#issuecomment-6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{ID: "1", Subject: tt.subject, Repository: repo}
			assert.Equal(t, tt.want, n.WebURL())
		})
	}
}

func TestCountUnread(t *testing.T) {
	list := []Notification{
		{ID: "1", Unread: true},
		{ID: "2", Unread: false},
		{ID: "3", Unread: true},
	}
	assert.Equal(t, 2, CountUnread(list))
	assert.Equal(t, 0, CountUnread(nil))
}
