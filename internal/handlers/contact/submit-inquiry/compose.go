package submitinquiry

import "strings"

const (
	fieldSeparator = " - "
	notApplicable  = "N/A"
)

// ComposeClientName joins the inquiry into the single client_name string
// the status endpoint stores. Values are used exactly as entered; empty
// optional fields become N/A.
func ComposeClientName(in Inquiry) string {
	return strings.Join([]string{
		in.Name,
		in.Email,
		orNotApplicable(in.Phone),
		orNotApplicable(in.Practice),
		orNotApplicable(in.CaseVolume),
		orNotApplicable(in.Message),
	}, fieldSeparator)
}

func orNotApplicable(v string) string {
	if v == "" {
		return notApplicable
	}
	return v
}
