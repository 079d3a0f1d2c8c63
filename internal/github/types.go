package github

// rawNotification is a notification thread as returned by
// GET /notifications.
type rawNotification struct {
	ID         string        `json:"id"`
	Unread     bool          `json:"unread"`
	Reason     string        `json:"reason"`
	UpdatedAt  string        `json:"updated_at"`
	URL        string        `json:"url"`
	Subject    rawSubject    `json:"subject"`
	Repository rawRepository `json:"repository"`
}

// rawSubject is the thread subject. GitHub sends null for url and
// latest_comment_url on some subject types (e.g., discussions, releases).
type rawSubject struct {
	Title            string  `json:"title"`
	URL              *string `json:"url"`
	LatestCommentURL *string `json:"latest_comment_url"`
	Type             string  `json:"type"`
}

// rawRepository is the minimal repository object embedded in a thread.
type rawRepository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	URL      string `json:"url"`
	HTMLURL  string `json:"html_url"`
}

// errorResponse is GitHub's error body format.
type errorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
