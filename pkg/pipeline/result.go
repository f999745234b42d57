package pipeline

// Status is the overall outcome of one invocation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	// StatusCopied means the document is on the clipboard but the mail
	// client handoff did not happen.
	StatusCopied Status = "copied"
	StatusFailed Status = "failed"
)

// User-facing notices. Each failure has its own so the user knows what to
// do next.
const (
	NoticeSucceeded      = "Copied. Paste the document into the new email."
	NoticeCopyFailed     = "Could not copy the document. Try again."
	NoticeOpenBlocked    = "Pop-ups are blocked. The document is copied; open your mail client manually."
	NoticeDispatchFailed = "The document is copied, but no email could be started. Open your mail client and paste it."
	NoticeNotFound       = "This deal could not be found."
	NoticeUnknownKind    = "This document type is not available."
	NoticeMissingData    = "The deal is missing information this document needs."
	NoticeRenderFailed   = "Could not prepare the document. Try again."
	NoticeSent           = "Email sent."
	NoticeSendFailed     = "Could not send the email. Try again."
	NoticeNoRecipient    = "This document has no recipient address. Use Copy & Email instead."
)

// Result is what the user is told about one invocation.
type Result struct {
	Status     Status `json:"status"`
	Notice     string `json:"notice"`
	URL        string `json:"url,omitempty"`
	MailClient string `json:"mail_client,omitempty"`
	Err        error  `json:"-"`
}

// OK reports whether the invocation fully succeeded.
func (r Result) OK() bool { return r.Status == StatusSucceeded }

func failed(notice string, err error) Result {
	return Result{Status: StatusFailed, Notice: notice, Err: err}
}
