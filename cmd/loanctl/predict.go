// cmd/loanctl/predict.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"loan-approval-workers/internal/applicant"
	"loan-approval-workers/internal/artifacts"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/prediction"

	"github.com/spf13/cobra"
)

type predictFlags struct {
	applicationID     string
	gender            string
	married           string
	dependents        string
	education         string
	selfEmployed      string
	applicantIncome   string
	coapplicantIncome string
	loanAmount        string
	loanTerm          string
	creditHistory     string
	propertyArea      string
	jsonOutput        bool
}

func (c *cli) predictCmd() *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one applicant",
		Example: `  loanctl predict --gender Male --married Yes --dependents 0 --education Graduate \
    --self-employed No --applicant-income 5000 --coapplicant-income 0 \
    --loan-amount 128 --loan-term 360 --credit-history 1 --property-area Urban`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runPredict(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.applicationID, "application-id", "", "correlation id echoed in the result")
	flags.StringVar(&f.gender, "gender", "", "Male or Female")
	flags.StringVar(&f.married, "married", "", "Yes or No")
	flags.StringVar(&f.dependents, "dependents", "", "0, 1, 2 or 3+")
	flags.StringVar(&f.education, "education", "", "Graduate or Not Graduate")
	flags.StringVar(&f.selfEmployed, "self-employed", "", "Yes or No")
	flags.StringVar(&f.applicantIncome, "applicant-income", "", "monthly applicant income")
	flags.StringVar(&f.coapplicantIncome, "coapplicant-income", "0", "monthly co-applicant income")
	flags.StringVar(&f.loanAmount, "loan-amount", "", "loan amount in thousands")
	flags.StringVar(&f.loanTerm, "loan-term", "360", "loan term in months")
	flags.StringVar(&f.creditHistory, "credit-history", "", "1 if credit history meets guidelines, else 0")
	flags.StringVar(&f.propertyArea, "property-area", "", "Urban, Semiurban or Rural")
	flags.BoolVar(&f.jsonOutput, "json", false, "print the decision as JSON")

	return cmd
}

// vars mirrors the job variables so the CLI goes through the same parsing as
// the worker. Flags left unset are omitted and reported as missing.
func (f *predictFlags) vars() map[string]interface{} {
	vars := map[string]interface{}{}
	set := func(key, value string) {
		if value != "" {
			vars[key] = value
		}
	}
	set(applicant.VarApplicationID, f.applicationID)
	set(applicant.VarGender, f.gender)
	set(applicant.VarMarried, f.married)
	set(applicant.VarDependents, f.dependents)
	set(applicant.VarEducation, f.education)
	set(applicant.VarSelfEmployed, f.selfEmployed)
	set(applicant.VarApplicantIncome, f.applicantIncome)
	set(applicant.VarCoapplicantIncome, f.coapplicantIncome)
	set(applicant.VarLoanAmount, f.loanAmount)
	set(applicant.VarLoanTermMonths, f.loanTerm)
	set(applicant.VarCreditHistory, f.creditHistory)
	set(applicant.VarPropertyArea, f.propertyArea)
	return vars
}

func (c *cli) runPredict(cmd *cobra.Command, f *predictFlags) error {
	ctx := cmd.Context()

	store, closer, err := artifacts.Open(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	defer closer.Close()

	pipeline, err := artifacts.NewLoader(store, artifacts.NamesFromConfig(c.cfg.Artifacts.Names), c.log).LoadPipeline(ctx)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	parsed, err := applicant.Parse(f.vars())
	if err != nil {
		return userError(err)
	}

	svc := prediction.NewService(prediction.ServiceDependencies{Predictor: pipeline, Logger: c.log})
	decision, err := svc.Predict(ctx, parsed)
	if err != nil {
		return userError(err)
	}

	out := cmd.OutOrStdout()
	if f.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	}
	fmt.Fprintln(out, decision.Message)
	return nil
}

// userError renders a pipeline error as "[CODE] Error during prediction: ...".
func userError(err error) error {
	stdErr := inference.ToStandardError(err)
	text := stdErr.Message
	if stdErr.Details != "" {
		text += ": " + stdErr.Details
	}
	return fmt.Errorf("[%s] %s", stdErr.Code, inference.UserMessage(errors.New(text)))
}
