package moodle

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeedbackAnonymous is the anonymity setting of a feedback whose respondents
// are not recorded. Any other value records user names.
const FeedbackAnonymous = 1

// Course is a course returned by core_course_get_courses_by_field.
type Course struct {
	ID           int    `json:"id"`
	FullName     string `json:"fullname"`
	ShortName    string `json:"shortname"`
	CategoryID   int    `json:"categoryid"`
	CategoryName string `json:"categoryname"`
	Visible      int    `json:"visible"`
}

// Feedback is a feedback (survey) activity attached to a course.
type Feedback struct {
	ID               int    `json:"id"`
	Course           int    `json:"course"`
	Name             string `json:"name"`
	Intro            string `json:"intro"`
	Anonymous        int    `json:"anonymous"`
	MultipleSubmit   bool   `json:"multiple_submit"`
	Autonumbering    bool   `json:"autonumbering"`
	PublishStats     bool   `json:"publish_stats"`
	CompletionSubmit bool   `json:"completionsubmit"`
	CourseModule     int    `json:"coursemodule"`
}

// IsAnonymous reports whether respondents are recorded anonymously.
func (f Feedback) IsAnonymous() bool {
	return f.Anonymous == FeedbackAnonymous
}

// Value is a response value. The web service declares these as raw strings but
// some question types come back as bare numbers.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("unexpected composite response value: %s", b)
	default:
		*v = Value(b)
	}
	return nil
}

// Response is one answered question within an attempt.
type Response struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	PrintVal Value  `json:"printval"`
	RawVal   Value  `json:"rawval"`
}

// Attempt is one respondent's completed submission. Named attempts carry the
// user, anonymous ones only a sequence number.
type Attempt struct {
	ID           int        `json:"id"`
	CourseID     int        `json:"courseid"`
	UserID       int        `json:"userid,omitempty"`
	FullName     string     `json:"fullname,omitempty"`
	Number       int        `json:"number,omitempty"`
	TimeModified int64      `json:"timemodified,omitempty"`
	Responses    []Response `json:"responses"`
}

// Analysis is the mod_feedback_get_responses_analysis payload. Exactly one of
// the attempt collections is populated, depending on the feedback's anonymity.
type Analysis struct {
	Attempts          []Attempt `json:"attempts"`
	TotalAttempts     int       `json:"totalattempts"`
	AnonAttempts      []Attempt `json:"anonattempts"`
	TotalAnonAttempts int       `json:"totalanonattempts"`
}

// Warning is an entry of the warnings array most functions return.
type Warning struct {
	Item        string `json:"item"`
	ItemID      int    `json:"itemid"`
	WarningCode string `json:"warningcode"`
	Message     string `json:"message"`
}
