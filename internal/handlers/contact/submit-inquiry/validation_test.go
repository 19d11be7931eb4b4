package submitinquiry

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maglinc-site/internal/common/errors"
	recordstatus "maglinc-site/internal/handlers/status/record-status"
)

func TestValidateInquiry(t *testing.T) {
	tests := []struct {
		name    string
		input   Inquiry
		wantErr bool
	}{
		{name: "valid", input: Inquiry{Name: "Dr. John Smith", Email: "john@example.com"}},
		{name: "email without tld accepted", input: Inquiry{Name: "A", Email: "a@localhost"}},
		{name: "missing name", input: Inquiry{Email: "john@example.com"}, wantErr: true},
		{name: "missing email", input: Inquiry{Name: "John"}, wantErr: true},
		{name: "whitespace name", input: Inquiry{Name: "   ", Email: "john@example.com"}, wantErr: true},
		{name: "whitespace email", input: Inquiry{Name: "John", Email: "\t"}, wantErr: true},
		{name: "email without at", input: Inquiry{Name: "John", Email: "john.example.com"}, wantErr: true},
		{name: "email without local part", input: Inquiry{Name: "John", Email: "@example.com"}, wantErr: true},
		{name: "email without domain", input: Inquiry{Name: "John", Email: "john@"}, wantErr: true},
		{name: "email with inner space", input: Inquiry{Name: "John", Email: "jo hn@example.com"}, wantErr: true},
		{name: "message at limit", input: Inquiry{Name: "A", Email: "a@b", Message: strings.Repeat("é", MaxMessageLength)}},
		{name: "message over limit", input: Inquiry{Name: "A", Email: "a@b", Message: strings.Repeat("x", MaxMessageLength+1)}, wantErr: true},
		{name: "name over limit", input: Inquiry{Name: strings.Repeat("n", MaxNameLength+1), Email: "a@b"}, wantErr: true},
		{name: "phone over limit", input: Inquiry{Name: "A", Email: "a@b", Phone: strings.Repeat("5", MaxPhoneLength+1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInquiry(&tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		})
	}
}

func TestValidateInquiry_TooLongMarksRule(t *testing.T) {
	err := ValidateInquiry(&Inquiry{Name: "A", Email: "a@b", CaseVolume: strings.Repeat("9", MaxCaseVolumeLength+1)})
	require.Error(t, err)
	stdErr := errors.AsStandardError(err)
	assert.Equal(t, RuleMaxLength, stdErr.Metadata["rule"])
	assert.Equal(t, "caseVolume", stdErr.Metadata["field"])
	assert.Equal(t, TooLongText, gateNotification(err).Text)

	assert.Equal(t, ValidationText, gateNotification(ValidateInquiry(&Inquiry{})).Text)
}

func TestFieldLimits_FitStatusEndpoint(t *testing.T) {
	in := Inquiry{
		Name:       strings.Repeat("n", MaxNameLength),
		Email:      strings.Repeat("e", MaxEmailLength-2) + "@x",
		Phone:      strings.Repeat("p", MaxPhoneLength),
		Practice:   strings.Repeat("r", MaxPracticeLength),
		CaseVolume: strings.Repeat("c", MaxCaseVolumeLength),
		Message:    strings.Repeat("m", MaxMessageLength),
	}
	require.NoError(t, ValidateInquiry(&in))
	assert.LessOrEqual(t, utf8.RuneCountInString(ComposeClientName(in)), recordstatus.MaxClientNameLength)
}

func TestInputSchema(t *testing.T) {
	res, err := GetInputSchema().ValidateBytes([]byte(`{"name":"A","email":"a@b","caseVolume":"10"}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = GetInputSchema().ValidateBytes([]byte(`{"name":"A","email":"a@b","budget":5}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "budget", res.Errors[0].Field)

	res, err = GetInputSchema().ValidateBytes([]byte(`{"name":42}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.BackendURL = "localhost:8000"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = 0
	assert.NoError(t, cfg.Validate(), "zero timeout disables the client timeout")

	cfg.Timeout = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.GuardTTL = 0
	assert.Error(t, cfg.Validate())
}
