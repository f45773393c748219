package ingest

import (
	"strings"

	"takaful/internal/docs"
	"takaful/internal/normalize"
	"takaful/pkg/types"
)

// parsedSubmission is a submission after normalization, ready to become or
// amend a record.
type parsedSubmission struct {
	lastName       string
	firstName      string
	phone          string
	phoneSecondary string
	email          string
	street         string
	postalCode     string
	city           string
	adultCount     int
	childCount     int
	zakatEligible  bool
	sadaqaEligible bool
	canTravel      bool
	language       string
	circumstance   string
	feeling        string
	specifics      string
	identityRefs   []string
	aidRefs        []string
}

// validateInsert checks the full required-field set for a new case and
// returns the normalized submission alongside any failures.
func validateInsert(sub types.Submission) (parsedSubmission, *types.ValidationError) {
	verr := types.NewValidationError()
	parsed := parsedSubmission{
		lastName:     strings.TrimSpace(sub.LastName),
		firstName:    strings.TrimSpace(sub.FirstName),
		street:       strings.TrimSpace(sub.Street),
		postalCode:   strings.TrimSpace(sub.PostalCode),
		city:         strings.TrimSpace(sub.City),
		circumstance: strings.TrimSpace(sub.Circumstance),
		feeling:      strings.TrimSpace(sub.Feeling),
		specifics:    strings.TrimSpace(sub.Specifics),
		language:     types.NormalizeLanguage(strings.TrimSpace(sub.Language)),
	}

	if parsed.lastName == "" {
		verr.Add("lastName", "last name is required")
	}
	if parsed.firstName == "" {
		verr.Add("firstName", "first name is required")
	}

	if !normalize.ValidPhone(sub.Phone) {
		verr.Add("phone", "not a recognized French phone shape")
	} else {
		parsed.phone = normalize.Phone(sub.Phone)
	}
	if raw := strings.TrimSpace(sub.PhoneSecondary); raw != "" && normalize.ValidPhone(raw) {
		parsed.phoneSecondary = normalize.Phone(raw)
	}

	if raw := strings.TrimSpace(sub.Email); raw != "" {
		if !normalize.ValidEmail(raw) {
			verr.Add("email", "invalid email address")
		} else {
			parsed.email = raw
		}
	}

	if parsed.street == "" {
		verr.Add("address", "street is required")
	}
	if parsed.postalCode == "" {
		verr.Add("postalCode", "postal code is required")
	}
	if parsed.city == "" {
		verr.Add("city", "city is required")
	}

	// blank counts read as zero, only garbage is an error
	if raw := strings.TrimSpace(sub.AdultCount); raw != "" {
		if n, ok := normalize.ParseCount(raw); ok {
			parsed.adultCount = n
		} else {
			verr.Add("adultCount", "adult count must be a non-negative number")
		}
	}
	if raw := strings.TrimSpace(sub.ChildCount); raw != "" {
		if n, ok := normalize.ParseCount(raw); ok {
			parsed.childCount = n
		} else {
			verr.Add("childCount", "child count must be a non-negative number")
		}
	}

	parsed.zakatEligible = normalize.YesNoToken(sub.ZakatEligible)
	parsed.sadaqaEligible = normalize.YesNoToken(sub.SadaqaEligible)
	parsed.canTravel = normalize.YesNoToken(sub.CanTravel)

	parsed.identityRefs = docs.SplitRefs(sub.IdentityDocRefs)
	parsed.aidRefs = docs.SplitRefs(sub.AidDocRefs)

	if verr.Any() {
		return parsed, verr
	}
	return parsed, nil
}

// buildChangeSet turns the non-empty fields of an update submission into
// cell writes, validating each one. Empty fields are never overwritten:
// blank means unchanged, not clear.
func buildChangeSet(sub types.Submission) (map[string]any, *types.ValidationError) {
	verr := types.NewValidationError()
	fields := map[string]any{}

	if v := strings.TrimSpace(sub.LastName); v != "" {
		fields["lastName"] = v
	}
	if v := strings.TrimSpace(sub.FirstName); v != "" {
		fields["firstName"] = v
	}

	if v := strings.TrimSpace(sub.Phone); v != "" {
		if !normalize.ValidPhone(v) {
			verr.Add("phone", "not a recognized French phone shape")
		} else {
			fields["phone"] = normalize.Phone(v)
		}
	}
	if v := strings.TrimSpace(sub.PhoneSecondary); v != "" {
		if !normalize.ValidPhone(v) {
			verr.Add("phoneSecondary", "not a recognized French phone shape")
		} else {
			fields["phoneSecondary"] = normalize.Phone(v)
		}
	}
	if v := strings.TrimSpace(sub.Email); v != "" {
		if !normalize.ValidEmail(v) {
			verr.Add("email", "invalid email address")
		} else {
			fields["email"] = v
		}
	}

	if v := strings.TrimSpace(sub.Severity); v != "" {
		if n, ok := normalize.ParseSeverity(v); ok {
			fields["severity"] = n
		} else {
			verr.Add("severity", "severity must be between 0 and 5")
		}
	}
	if v := strings.TrimSpace(sub.Language); v != "" {
		fields["language"] = types.NormalizeLanguage(v)
	}

	if v := strings.TrimSpace(sub.AdultCount); v != "" {
		if n, ok := normalize.ParseCount(v); ok {
			fields["adultCount"] = n
		} else {
			verr.Add("adultCount", "adult count must be a non-negative number")
		}
	}
	if v := strings.TrimSpace(sub.ChildCount); v != "" {
		if n, ok := normalize.ParseCount(v); ok {
			fields["childCount"] = n
		} else {
			verr.Add("childCount", "child count must be a non-negative number")
		}
	}

	if v := strings.TrimSpace(sub.ZakatEligible); v != "" {
		fields["zakatEligible"] = normalize.YesNoToken(v)
	}
	if v := strings.TrimSpace(sub.SadaqaEligible); v != "" {
		fields["sadaqaEligible"] = normalize.YesNoToken(v)
	}
	if v := strings.TrimSpace(sub.CanTravel); v != "" {
		fields["canTravel"] = normalize.YesNoToken(v)
	}

	if v := strings.TrimSpace(sub.Circumstance); v != "" {
		fields["circumstance"] = v
	}
	if v := strings.TrimSpace(sub.Feeling); v != "" {
		fields["feeling"] = v
	}
	if v := strings.TrimSpace(sub.Specifics); v != "" {
		fields["specifics"] = v
	}

	if verr.Any() {
		return nil, verr
	}
	return fields, nil
}
