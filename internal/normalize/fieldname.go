package normalize

import "strings"

// canonicalFieldNames maps form/spreadsheet headers in the three supported
// languages onto canonical field names. Lookup is case-insensitive on the
// trimmed header.
var canonicalFieldNames = map[string]string{
	// last name
	"nom":       "lastName",
	"last name": "lastName",
	"اللقب":     "lastName",
	// first name
	"prénom":     "firstName",
	"prenom":     "firstName",
	"first name": "firstName",
	"الاسم":      "firstName",
	// phone
	"téléphone": "phone",
	"telephone": "phone",
	"phone":     "phone",
	"الهاتف":    "phone",
	// secondary phone
	"téléphone secondaire": "phoneSecondary",
	"secondary phone":      "phoneSecondary",
	"هاتف ثانوي":           "phoneSecondary",
	// email
	"email":             "email",
	"courriel":          "email",
	"البريد الإلكتروني": "email",
	// address
	"adresse": "street",
	"address": "street",
	"العنوان": "street",
	// postal code
	"code postal":    "postalCode",
	"postal code":    "postalCode",
	"الرمز البريدي":  "postalCode",
	// city
	"ville":   "city",
	"city":    "city",
	"المدينة": "city",
	// counts
	"adultes":            "adultCount",
	"nombre d'adultes":   "adultCount",
	"adults":             "adultCount",
	"البالغون":           "adultCount",
	"enfants":            "childCount",
	"nombre d'enfants":   "childCount",
	"children":           "childCount",
	"الأطفال":            "childCount",
	// eligibility
	"zakat":     "zakatEligible",
	"الزكاة":    "zakatEligible",
	"sadaqa":    "sadaqaEligible",
	"sadaka":    "sadaqaEligible",
	"الصدقة":    "sadaqaEligible",
	// mobility
	"se déplace":  "canTravel",
	"se deplace":  "canTravel",
	"can travel":  "canTravel",
	"يمكنه التنقل": "canTravel",
	// language
	"langue": "language",
	"language": "language",
	"اللغة":  "language",
	// severity
	"criticité": "severity",
	"criticite": "severity",
	"severity":  "severity",
	"الأولوية":  "severity",
	// free text
	"situation":     "circumstance",
	"circumstances": "circumstance",
	"الوضع":         "circumstance",
	"ressenti":      "feeling",
	"feeling":       "feeling",
	"الشعور":        "feeling",
	"précisions":    "specifics",
	"precisions":    "specifics",
	"specifics":     "specifics",
	"تفاصيل":        "specifics",
	// documents
	"pièce d'identité": "identityDocRefs",
	"identity":         "identityDocRefs",
	"وثيقة الهوية":     "identityDocRefs",
	"justificatifs":    "aidDocRefs",
	"aid documents":    "aidDocRefs",
	"مستندات":          "aidDocRefs",
}

// FieldName resolves a multilingual header to its canonical field name;
// the second return is false for unknown headers.
func FieldName(header string) (string, bool) {
	name, ok := canonicalFieldNames[strings.ToLower(strings.TrimSpace(header))]
	return name, ok
}
