package domain

import "time"

// DownloadItem is one queued download. creationTime is stored as an ISO-8601
// string so the table's sort key orders chronologically.
type DownloadItem struct {
	ID           string  `json:"id" dynamodbav:"id"`
	CreationTime string  `json:"creationTime" dynamodbav:"creationTime"`
	URL          string  `json:"url" dynamodbav:"url"`
	Filename     string  `json:"filename" dynamodbav:"filename"`
	Error        *string `json:"error,omitempty" dynamodbav:"error,omitempty"`
	LastAttempt  *string `json:"lastAttempt,omitempty" dynamodbav:"lastAttempt,omitempty"`
}

// Failed reports whether a previous attempt recorded an error.
func (d *DownloadItem) Failed() bool {
	return d.Error != nil && *d.Error != ""
}

// CreatedAt parses CreationTime, returning the zero time if it is malformed.
func (d *DownloadItem) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, d.CreationTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EnqueueRequest is the payload for adding an item through the queue API.
type EnqueueRequest struct {
	URL  string `json:"url" validate:"required,httpurl"`
	Name string `json:"name" validate:"max=200"`
}
