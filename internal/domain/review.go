package domain

import (
	"strconv"
	"time"
)

const (
	ReviewReplyKey  = "reviewReply"
	ReviewCreateKey = "createTime"
	StarRatingKey   = "starRating"

	DefaultReplyTemplate = "Thank you for your review!"
)

var starRatings = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// StarValue returns the numeric star rating of a review, or 0 if the review
// is unrated or the rating is not recognised.
func StarValue(r Review) int {
	switch v := r[StarRatingKey].(type) {
	case string:
		if n, ok := starRatings[v]; ok {
			return n
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return 0
		}
		return n
	case float64:
		if v >= 1 && v <= 5 {
			return int(v)
		}
	case int:
		if v >= 1 && v <= 5 {
			return v
		}
	}
	return 0
}

// IsAnswered reports whether the review carries an owner reply.
func IsAnswered(r Review) bool {
	return r.Present(ReviewReplyKey)
}

// Unanswered returns the reviews without an owner reply, in order. The result
// is never nil.
func Unanswered(reviews []Review) []Review {
	out := []Review{}
	for _, r := range reviews {
		if !IsAnswered(r) {
			out = append(out, r)
		}
	}
	return out
}

// CreateTime parses the review's createTime. A trailing "Z" is read as UTC.
func CreateTime(r Review) (time.Time, bool) {
	s := r.String(ReviewCreateKey)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ReplyStatus is the outcome of one reply in a bulk run.
type ReplyStatus string

const (
	ReplySuccess ReplyStatus = "success"
	ReplyFailed  ReplyStatus = "error"
)

// ReplyResult is the outcome of replying to one review during a bulk reply.
type ReplyResult struct {
	ReviewName string      `json:"review"`
	Status     ReplyStatus `json:"status"`
	Result     Record      `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ReviewStats summarises the reviews of a location.
type ReviewStats struct {
	Total   int     `json:"total"`
	Rated   int     `json:"rated"`
	Replied int     `json:"replied"`
	Average float64 `json:"average"`
}

// ContactInfo holds the contact fields that can be patched on a location.
// Empty fields are left untouched.
type ContactInfo struct {
	Phone   string
	Website string
}
