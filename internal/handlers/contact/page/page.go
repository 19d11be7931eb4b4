// Package page renders the contact section around the form.
package page

import (
	"embed"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

//go:embed templates/*.html
var templateFS embed.FS

const templateName = "templates/contact.html"

type Field struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Type        string `yaml:"type"`
	Placeholder string `yaml:"placeholder"`
	Required    bool   `yaml:"required"`
	Multiline   bool   `yaml:"multiline"`
}

type Step struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Content struct {
	Badge   string `yaml:"badge"`
	Heading string `yaml:"heading"`
	Intro   string `yaml:"intro"`
	Form    struct {
		Title      string  `yaml:"title"`
		Submit     string  `yaml:"submit"`
		Submitting string  `yaml:"submitting"`
		Privacy    string  `yaml:"privacy"`
		Fields     []Field `yaml:"fields"`
	} `yaml:"form"`
	NextSteps struct {
		Title string `yaml:"title"`
		Intro string `yaml:"intro"`
		Steps []Step `yaml:"steps"`
	} `yaml:"next_steps"`
	Questions struct {
		Title  string   `yaml:"title"`
		Points []string `yaml:"points"`
	} `yaml:"questions"`
}

// LoadContent parses the embedded page copy.
func LoadContent() (*Content, error) {
	return ParseContent(contentYAML)
}

func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}
	if len(c.Form.Fields) == 0 {
		return nil, fmt.Errorf("page content defines no form fields")
	}
	for i := range c.Form.Fields {
		if c.Form.Fields[i].Type == "" {
			c.Form.Fields[i].Type = "text"
		}
	}
	return &c, nil
}

// Notice is the toast shown above the form.
type Notice struct {
	Kind string
	Text string
}

// View is the per-request state of the page.
type View struct {
	Values       map[string]string
	Notification *Notice
	Submitting   bool
}

type fieldView struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Required    bool
	Multiline   bool
	Value       string
}

type Renderer struct {
	content *Content
	tmpl    *pongo2.Template
}

func NewRenderer() (*Renderer, error) {
	content, err := LoadContent()
	if err != nil {
		return nil, err
	}

	set := pongo2.NewSet("contact", pongo2.NewFSLoader(templateFS))
	tmpl, err := set.FromFile(templateName)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", templateName, err)
	}

	return &Renderer{content: content, tmpl: tmpl}, nil
}

func (r *Renderer) Content() *Content {
	return r.content
}

// Render writes the page. Output is HTML-escaped by the template engine.
func (r *Renderer) Render(w io.Writer, v View) error {
	fields := make([]fieldView, 0, len(r.content.Form.Fields))
	for _, f := range r.content.Form.Fields {
		fields = append(fields, fieldView{
			Name:        f.Name,
			Label:       f.Label,
			Type:        f.Type,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Multiline:   f.Multiline,
			Value:       v.Values[f.Name],
		})
	}

	ctx := pongo2.Context{
		"content":    r.content,
		"fields":     fields,
		"submitting": v.Submitting,
	}
	if v.Notification != nil {
		ctx["notification"] = v.Notification
	}

	return r.tmpl.ExecuteWriter(ctx, w)
}
