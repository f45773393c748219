package types

// Submission is one decoded form payload entering the ingestion engine.
// All fields arrive as loosely-typed text; the engine normalizes and
// validates before anything touches the store. A blank field on an update
// means "unchanged", never "clear".
type Submission struct {
	TargetID string `form:"id"` // set when the form explicitly targets an existing record

	LastName       string `form:"last_name"`
	FirstName      string `form:"first_name"`
	Phone          string `form:"phone"`
	PhoneSecondary string `form:"phone_secondary"`
	Email          string `form:"email"`
	Street         string `form:"address"`
	PostalCode     string `form:"postal_code"`
	City           string `form:"city"`
	AdultCount     string `form:"adult_count"`
	ChildCount     string `form:"child_count"`

	ZakatEligible  string `form:"zakat_eligible"`
	SadaqaEligible string `form:"sadaqa_eligible"`
	CanTravel      string `form:"can_travel"`
	Language       string `form:"language"`
	Severity       string `form:"severity"`

	Circumstance string `form:"circumstance"`
	Feeling      string `form:"feeling"`
	Specifics    string `form:"specifics"`

	IdentityDocRefs string `form:"identity_docs"`
	AidDocRefs      string `form:"aid_docs"`

	// Origin identifies the form the submission came from; its name is
	// matched against update-intent keywords during classification.
	Origin string `form:"origin"`
}

// SubmissionKind classifies a submission; ambiguous inputs default to create.
type SubmissionKind int

const (
	SubmissionCreate SubmissionKind = iota
	SubmissionUpdate
)

func (k SubmissionKind) String() string {
	if k == SubmissionUpdate {
		return "update"
	}
	return "create"
}

// Change is one detected field-level difference, shared by both sync
// directions and the update comment trail.
type Change struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// IngestOutcome reports what the engine did with a submission.
type IngestOutcome struct {
	Kind             SubmissionKind
	FamilyID         int
	Rejected         bool
	Merged           bool // duplicate path: folded into an existing record
	Changes          []Change
	RejectionReasons []string
}

// PullReport summarizes one reverse-sync run.
type PullReport struct {
	Total     int          `json:"total"`
	Updated   int          `json:"updated"`
	Unchanged int          `json:"unchanged"`
	NotFound  int          `json:"notFound"`
	Errors    int          `json:"errors"`
	Details   []PullDetail `json:"details"`
}

type PullDetail struct {
	FamilyID int      `json:"familyId"`
	Status   string   `json:"status"` // updated | unchanged | not_found | skipped | error
	Changes  []Change `json:"changes,omitempty"`
	Message  string   `json:"message,omitempty"`
}
