package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	submitinquiry "maglinc-site/internal/handlers/contact/submit-inquiry"
)

// Prompter asks for one field value. The survey implementation talks to
// the terminal; tests substitute a scripted one.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
}

type Question struct {
	Message   string
	Default   string
	Required  bool
	Multiline bool
}

var errInterrupted = errors.New("prompt interrupted")

type surveyPrompter struct{}

func (surveyPrompter) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var opts []survey.AskOpt
	if q.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var prompt survey.Prompt
	if q.Multiline {
		prompt = &survey.Multiline{Message: q.Message, Default: q.Default}
	} else {
		prompt = &survey.Input{Message: q.Message, Default: q.Default}
	}

	var out string
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errInterrupted
		}
		return "", err
	}
	return out, nil
}

// promptInquiry fills every field of in, offering the current values as
// defaults. Name and email must not be left blank.
func promptInquiry(ctx context.Context, p Prompter, in submitinquiry.Inquiry) (submitinquiry.Inquiry, error) {
	fields := []struct {
		question Question
		target   *string
	}{
		{Question{Message: "Full name", Required: true}, &in.Name},
		{Question{Message: "Email", Required: true}, &in.Email},
		{Question{Message: "Phone"}, &in.Phone},
		{Question{Message: "Practice or firm"}, &in.Practice},
		{Question{Message: "Monthly case volume"}, &in.CaseVolume},
		{Question{Message: "Message", Multiline: true}, &in.Message},
	}

	for _, f := range fields {
		q := f.question
		q.Default = *f.target
		answer, err := p.Ask(ctx, q)
		if err != nil {
			return in, fmt.Errorf("%s: %w", strings.ToLower(q.Message), err)
		}
		if q.Required && strings.TrimSpace(answer) == "" {
			return in, fmt.Errorf("%s is required", strings.ToLower(q.Message))
		}
		*f.target = answer
	}
	return in, nil
}
