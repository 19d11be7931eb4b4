// cmd/tools/inquiry-cli/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/logger"
	submitinquiry "maglinc-site/internal/handlers/contact/submit-inquiry"
)

// errNotDelivered makes the process exit 1 after the notification text has
// already been printed.
var errNotDelivered = errors.New("inquiry not delivered")

type inquiryFlags struct {
	inquiry     submitinquiry.Inquiry
	backendURL  string
	timeout     time.Duration
	interactive bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, surveyPrompter{}).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNotDelivered) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, prompter Prompter) *cobra.Command {
	root := &cobra.Command{
		Use:           "inquiry-cli",
		Short:         "Send contact inquiries to the status endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newSubmitCmd(prompter), newComposeCmd(prompter))
	return root
}

func bindInquiryFlags(cmd *cobra.Command, f *inquiryFlags) {
	cmd.Flags().StringVar(&f.inquiry.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&f.inquiry.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&f.inquiry.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.inquiry.Practice, "practice", "", "Practice or firm name")
	cmd.Flags().StringVar(&f.inquiry.CaseVolume, "case-volume", "", "Monthly case volume")
	cmd.Flags().StringVar(&f.inquiry.Message, "message", "", "Message")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Prompt for each field")
}

func newSubmitCmd(prompter Prompter) *cobra.Command {
	f := &inquiryFlags{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Compose an inquiry and POST it to {backend}/api/status",
		Long: `Compose an inquiry and POST it to {backend}/api/status.

The backend URL comes from --backend-url, then BACKEND_URL or the config
file, then http://localhost:8000. Exits 1 when the inquiry is rejected or
not delivered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, f, prompter)
		},
	}
	bindInquiryFlags(cmd, f)
	cmd.Flags().StringVar(&f.backendURL, "backend-url", "", "Base URL of the status endpoint")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Request timeout, 0 disables")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log request details to stderr")
	return cmd
}

func newComposeCmd(prompter Prompter) *cobra.Command {
	f := &inquiryFlags{}
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the client_name that submit would send",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := collect(cmd.Context(), f, prompter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), submitinquiry.ComposeClientName(in))
			return nil
		},
	}
	bindInquiryFlags(cmd, f)
	return cmd
}

func collect(ctx context.Context, f *inquiryFlags, prompter Prompter) (submitinquiry.Inquiry, error) {
	if !f.interactive {
		return f.inquiry, nil
	}
	return promptInquiry(ctx, prompter, f.inquiry)
}

func runSubmit(cmd *cobra.Command, f *inquiryFlags, prompter Prompter) error {
	in, err := collect(cmd.Context(), f, prompter)
	if err != nil {
		return err
	}

	log := logger.NewNoOpLogger()
	if f.verbose {
		log = logger.NewStructured("debug", "console")
	}

	cfg := submitinquiry.DefaultConfig()
	cfg.BackendURL = resolveBackendURL(f.backendURL)
	cfg.Timeout = f.timeout
	if err := cfg.Validate(); err != nil {
		return err
	}

	service := submitinquiry.NewService(submitinquiry.ServiceDependencies{Logger: log}, cfg)
	result := submitinquiry.NewForm(service,
		submitinquiry.WithFields(in),
		submitinquiry.WithLogger(log),
	).Submit(cmd.Context())

	if result.Notification != nil {
		fmt.Fprintln(cmd.OutOrStdout(), result.Notification.Text)
	}
	if result.Outcome != submitinquiry.OutcomeSucceeded {
		return errNotDelivered
	}
	if result.Output != nil && result.Output.StatusID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Status record: %s\n", result.Output.StatusID)
	}
	return nil
}

// resolveBackendURL prefers the flag, then the loaded configuration.
func resolveBackendURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.Backend.URL
	}
	if env := os.Getenv("BACKEND_URL"); env != "" {
		return env
	}
	return config.DefaultBackendURL
}
