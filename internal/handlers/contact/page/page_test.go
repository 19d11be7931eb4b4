package page

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadContent(t *testing.T) {
	c, err := LoadContent()
	require.NoError(t, err)

	var names []string
	for _, f := range c.Form.Fields {
		names = append(names, f.Name)
	}
	want := []string{"name", "email", "phone", "practice", "caseVolume", "message"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("form field order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Schedule Free Consultation", c.Form.Submit)
	assert.Equal(t, "Submitting...", c.Form.Submitting)
	assert.Len(t, c.NextSteps.Steps, 3)
	assert.Equal(t, "Commencement", c.NextSteps.Steps[2].Title)
	assert.Equal(t, []string{
		"24-hour response time guarantee",
		"Free initial consultation",
		"No obligation or commitment required",
	}, c.Questions.Points)
	assert.Equal(t, "text", c.Form.Fields[0].Type)
	assert.Equal(t, "email", c.Form.Fields[1].Type)
}

func TestParseContent_Errors(t *testing.T) {
	_, err := ParseContent([]byte("form: ["))
	assert.Error(t, err)

	_, err = ParseContent([]byte("heading: x\n"))
	assert.EqualError(t, err, "page content defines no form fields")
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, View{
		Values: map[string]string{
			"name":    "Dr. <b>Smith</b>",
			"message": "Need help",
		},
		Notification: &Notice{Kind: "success", Text: "Thank you! We'll be in touch within 24 hours."},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `action="/contact"`)
	assert.Contains(t, html, "Dr. &lt;b&gt;Smith&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Smith</b>")
	assert.Contains(t, html, ">Need help</textarea>")
	assert.Contains(t, html, "toast-success")
	assert.Contains(t, html, "Schedule Free Consultation")
	assert.Contains(t, html, "Step 3")
}

func TestRenderer_RenderIdleHasNoToast(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, View{}))
	assert.NotContains(t, buf.String(), `class="toast`)
	assert.Contains(t, buf.String(), `placeholder="Dr. John Smith"`)
}
