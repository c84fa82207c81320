package model

// EmailDraft is a transient vendor email produced by the drafting call.
type EmailDraft struct {
	Subject string
	Body    string
}
