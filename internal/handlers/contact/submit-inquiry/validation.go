package submitinquiry

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/validation"
)

// Per-field limits in characters. Composed with separators they stay well
// under the status endpoint's 4000 character client_name limit.
const (
	MaxNameLength       = 200
	MaxEmailLength      = 320
	MaxPhoneLength      = 50
	MaxPracticeLength   = 200
	MaxCaseVolumeLength = 100
	MaxMessageLength    = 2000
)

// RuleMaxLength marks gate errors caused by an over-long field.
const RuleMaxLength = "max_length"

// inputSchema describes the JSON body of POST /api/inquiries. Required
// fields are checked by ValidateInquiry so a missing name gets the same
// treatment as a blank one.
var inputSchema = fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "name":       {"type": "string", "maxLength": %d},
    "email":      {"type": "string", "maxLength": %d},
    "phone":      {"type": "string", "maxLength": %d},
    "practice":   {"type": "string", "maxLength": %d},
    "caseVolume": {"type": "string", "maxLength": %d},
    "message":    {"type": "string", "maxLength": %d}
  },
  "additionalProperties": false
}`, MaxNameLength, MaxEmailLength, MaxPhoneLength, MaxPracticeLength, MaxCaseVolumeLength, MaxMessageLength)

var inquirySchema = validation.MustCompile("inquiry", inputSchema)

// GetInputSchema returns the compiled schema for the JSON inquiry body.
func GetInputSchema() *validation.Schema {
	return inquirySchema
}

// ValidateInquiry is the gate every submission passes before the network
// call: name and email must be present, the email must look like
// local@domain and no field may exceed its length limit.
func ValidateInquiry(in *Inquiry) error {
	if isBlank(in.Name) || isBlank(in.Email) {
		return errors.NewValidationFailedError("name and email are required")
	}
	if !looksLikeEmail(in.Email) {
		return errors.NewValidationFailedError("email must look like an address")
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"name", in.Name, MaxNameLength},
		{"email", in.Email, MaxEmailLength},
		{"phone", in.Phone, MaxPhoneLength},
		{"practice", in.Practice, MaxPracticeLength},
		{"caseVolume", in.CaseVolume, MaxCaseVolumeLength},
		{"message", in.Message, MaxMessageLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return errors.NewValidationFailedError(fmt.Sprintf("%s must be at most %d characters", l.field, l.max)).
				WithMetadata("rule", RuleMaxLength).
				WithMetadata("field", l.field)
		}
	}
	return nil
}

// gateNotification picks the toast for a ValidateInquiry error.
func gateNotification(err error) *Notification {
	if stdErr := errors.AsStandardError(err); stdErr != nil && stdErr.Metadata["rule"] == RuleMaxLength {
		return tooLongNotification()
	}
	return validationNotification()
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

func looksLikeEmail(v string) bool {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, " \t\r\n") {
		return false
	}
	at := strings.LastIndex(v, "@")
	return at > 0 && at < len(v)-1
}
