package store

// The field↔column mapping lives here and nowhere else, so adding or
// reordering a column is a single-point change shared by the repository
// and the cell-update path.

var fieldColumns = map[string]string{
	"lastName":        "last_name",
	"firstName":       "first_name",
	"zakatEligible":   "zakat_eligible",
	"sadaqaEligible":  "sadaqa_eligible",
	"canTravel":       "can_travel",
	"adultCount":      "adult_count",
	"childCount":      "child_count",
	"address":         "address",
	"locationUnitId":  "location_unit_id",
	"email":           "email",
	"phone":           "phone",
	"phoneSecondary":  "phone_secondary",
	"identityDocRefs": "identity_doc_refs",
	"aidDocRefs":      "aid_doc_refs",
	"circumstance":    "circumstance",
	"feeling":         "feeling",
	"specifics":       "specifics",
	"severity":        "severity",
	"language":        "language",
	"status":          "status",
	"commentLog":      "comment_log",
}

// ColumnFor resolves a canonical field name to its table column.
func ColumnFor(field string) (string, bool) {
	col, ok := fieldColumns[field]
	return col, ok
}
