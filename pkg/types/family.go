package types

import (
	"time"
)

type FamilyStatus string

const (
	FamilyStatusReceived   FamilyStatus = "RECEIVED"
	FamilyStatusInProgress FamilyStatus = "IN_PROGRESS"
	FamilyStatusPending    FamilyStatus = "PENDING"
	FamilyStatusValidated  FamilyStatus = "VALIDATED"
	FamilyStatusRejected   FamilyStatus = "REJECTED"
	FamilyStatusArchived   FamilyStatus = "ARCHIVED"
)

func (s FamilyStatus) Valid() bool {
	switch s {
	case FamilyStatusReceived, FamilyStatusInProgress, FamilyStatusPending,
		FamilyStatusValidated, FamilyStatusRejected, FamilyStatusArchived:
		return true
	}
	return false
}

// Supported record languages, full names. The first is the default.
const (
	LanguageFrench  = "Français"
	LanguageEnglish = "English"
	LanguageArabic  = "العربية"
)

var SupportedLanguages = []string{LanguageFrench, LanguageEnglish, LanguageArabic}

// NormalizeLanguage maps an arbitrary value onto a supported language,
// falling back to French for anything unrecognized.
func NormalizeLanguage(raw string) string {
	for _, l := range SupportedLanguages {
		if raw == l {
			return l
		}
	}
	return LanguageFrench
}

// CommentLogCap is the maximum number of entries kept in a family's
// comment log; older entries fall off the end.
const CommentLogCap = 5

type CommentEntry struct {
	At   time.Time `json:"at"`
	Tag  string    `json:"tag"`
	Text string    `json:"text"`
}

type CommentLog []CommentEntry

// Prepend inserts an entry at the head and truncates the log to
// CommentLogCap entries, most recent first.
func (l CommentLog) Prepend(e CommentEntry) CommentLog {
	out := make(CommentLog, 0, CommentLogCap)
	out = append(out, e)
	for _, existing := range l {
		if len(out) == CommentLogCap {
			break
		}
		out = append(out, existing)
	}
	return out
}

// FamilyRecord is one row in the families table, the canonical entity.
type FamilyRecord struct {
	ID              int          `db:"id" json:"id"`
	LastName        string       `db:"last_name" json:"lastName"`
	FirstName       string       `db:"first_name" json:"firstName"`
	ZakatEligible   bool         `db:"zakat_eligible" json:"zakatEligible"`
	SadaqaEligible  bool         `db:"sadaqa_eligible" json:"sadaqaEligible"`
	CanTravel       bool         `db:"can_travel" json:"canTravel"`
	AdultCount      int          `db:"adult_count" json:"adultCount"`
	ChildCount      int          `db:"child_count" json:"childCount"`
	Address         string       `db:"address" json:"address"`
	LocationUnitID  *string      `db:"location_unit_id" json:"locationUnitId"`
	Email           string       `db:"email" json:"email"`
	Phone           string       `db:"phone" json:"phone"`
	PhoneSecondary  string       `db:"phone_secondary" json:"phoneSecondary"`
	IdentityDocRefs string       `db:"identity_doc_refs" json:"identityDocRefs"`
	AidDocRefs      string       `db:"aid_doc_refs" json:"aidDocRefs"`
	Circumstance    string       `db:"circumstance" json:"circumstance"`
	Feeling         string       `db:"feeling" json:"feeling"`
	Specifics       string       `db:"specifics" json:"specifics"`
	Severity        int          `db:"severity" json:"severity"`
	Language        string       `db:"language" json:"language"`
	Status          FamilyStatus `db:"status" json:"status"`
	CommentLog      CommentLog   `db:"comment_log" json:"commentLog"` // jsonb
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// AppendComment records a timestamped, emoji-tagged entry at the head of
// the capped comment log.
func (f *FamilyRecord) AppendComment(tag, text string) {
	f.CommentLog = f.CommentLog.Prepend(CommentEntry{At: time.Now(), Tag: tag, Text: text})
}

// ValidateSeverity reports whether v is an acceptable prioritization score.
func ValidateSeverity(v int) bool {
	return v >= 0 && v <= 5
}
