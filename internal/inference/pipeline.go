// internal/inference/pipeline.go
package inference

import (
	"fmt"
)

// PredictionResult is the decoded loan decision.
type PredictionResult string

const (
	Approved PredictionResult = "Approved"
	Rejected PredictionResult = "Rejected"
)

// Loan_Status labels as fitted by the training encoder.
const (
	LoanStatusYes = "Y"
	LoanStatusNo  = "N"
)

// Label returns the Loan_Status label for the result.
func (r PredictionResult) Label() string {
	if r == Approved {
		return LoanStatusYes
	}
	return LoanStatusNo
}

// Message is the sentence shown to the applicant.
func (r PredictionResult) Message() string {
	return fmt.Sprintf("Loan is likely to be %s.", string(r))
}

func resultFromLabel(label string) (PredictionResult, error) {
	switch label {
	case LoanStatusYes:
		return Approved, nil
	case LoanStatusNo:
		return Rejected, nil
	default:
		return "", &SchemaMismatchError{Reason: fmt.Sprintf("loan status label %q is neither Y nor N", label)}
	}
}

// Artifacts holds everything fitted at training time. Encoders are keyed by
// field name and must include Loan_Status.
type Artifacts struct {
	Encoders   map[string]*CategoricalEncoder
	Scaler     *StandardScaler
	Classifier Classifier
	Columns    ColumnOrder
}

// Pipeline turns applicant records into loan decisions. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	encoders   map[string]*CategoricalEncoder
	loanStatus *CategoricalEncoder
	scaler     *StandardScaler
	classifier Classifier
	columns    ColumnOrder
}

// NewPipeline checks that the artifacts agree with each other and with the
// features this package assembles. Any disagreement is a SchemaMismatchError.
func NewPipeline(a Artifacts) (*Pipeline, error) {
	if a.Scaler == nil {
		return nil, &SchemaMismatchError{Missing: []string{"scaler"}, Reason: "artifact not provided"}
	}
	if a.Classifier == nil {
		return nil, &SchemaMismatchError{Missing: []string{"classifier"}, Reason: "artifact not provided"}
	}

	encoders := make(map[string]*CategoricalEncoder, len(CategoricalFields))
	var missing []string
	for _, field := range append(append([]string(nil), CategoricalFields...), FieldLoanStatus) {
		enc, ok := a.Encoders[field]
		if !ok || enc == nil {
			missing = append(missing, field)
			continue
		}
		if enc.Field() != field {
			return nil, &SchemaMismatchError{
				Reason: fmt.Sprintf("encoder registered as %s was fitted on %s", field, enc.Field()),
			}
		}
		encoders[field] = enc
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Missing: missing, Reason: "label encoders not provided"}
	}

	columns := append(ColumnOrder(nil), a.Columns...)
	if err := columns.Validate(FeatureNames); err != nil {
		return nil, err
	}

	if n := a.Scaler.NumFeatures(); n != len(columns) {
		return nil, &SchemaMismatchError{Reason: fmt.Sprintf("scaler fitted on %d features, column order has %d", n, len(columns))}
	}
	if names := a.Scaler.FeatureNames(); names != nil {
		for i, name := range names {
			if columns[i] != name {
				return nil, &SchemaMismatchError{
					Reason: fmt.Sprintf("scaler column %d is %s, column order has %s", i, name, columns[i]),
				}
			}
		}
	}
	if n := a.Classifier.NumFeatures(); n != len(columns) {
		return nil, &SchemaMismatchError{Reason: fmt.Sprintf("classifier fitted on %d features, column order has %d", n, len(columns))}
	}

	loanStatus := encoders[FieldLoanStatus]
	for _, class := range a.Classifier.Classes() {
		label, err := loanStatus.Decode(class)
		if err != nil {
			return nil, err
		}
		if _, err := resultFromLabel(label); err != nil {
			return nil, err
		}
	}
	delete(encoders, FieldLoanStatus)

	return &Pipeline{
		encoders:   encoders,
		loanStatus: loanStatus,
		scaler:     a.Scaler,
		classifier: a.Classifier,
		columns:    columns,
	}, nil
}

// Features encodes and validates the record and returns the assembled
// feature vector in FeatureNames order. Categories are encoded first, so an
// unknown category is reported ahead of any numeric error.
func (p *Pipeline) Features(record ApplicantRecord) (FeatureVector, error) {
	raw := map[string]string{
		FieldGender:       record.Gender,
		FieldMarried:      record.Married,
		FieldDependents:   record.Dependents,
		FieldEducation:    record.Education,
		FieldSelfEmployed: record.SelfEmployed,
		FieldPropertyArea: record.PropertyArea,
	}
	encoded := make(map[string]float64, len(CategoricalFields))
	for _, field := range CategoricalFields {
		code, err := p.encoders[field].Encode(raw[field])
		if err != nil {
			return FeatureVector{}, err
		}
		encoded[field] = float64(code)
	}

	if err := record.Validate(); err != nil {
		return FeatureVector{}, err
	}

	d := Derive(record.ApplicantIncome, record.CoapplicantIncome, record.LoanAmount)

	return NewFeatureVector(FeatureNames, []float64{
		encoded[FieldGender],
		encoded[FieldMarried],
		encoded[FieldDependents],
		encoded[FieldEducation],
		encoded[FieldSelfEmployed],
		record.ApplicantIncome,
		record.CoapplicantIncome,
		record.LoanAmount,
		record.LoanTermMonths,
		record.CreditHistory,
		encoded[FieldPropertyArea],
		d.TotalIncome,
		d.LogTotalIncome,
		d.LogLoanAmount,
		d.LoanToIncomeRatio,
	})
}

// Predict runs the full inference pipeline for one record.
func (p *Pipeline) Predict(record ApplicantRecord) (PredictionResult, error) {
	fv, err := p.Features(record)
	if err != nil {
		return "", err
	}

	ordered, err := fv.Reorder(p.columns)
	if err != nil {
		return "", err
	}

	scaled, err := p.scaler.Transform(ordered.Values())
	if err != nil {
		return "", err
	}

	class, err := p.classifier.Predict(scaled)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	label, err := p.loanStatus.Decode(class)
	if err != nil {
		return "", err
	}
	return resultFromLabel(label)
}

// ModelInfo describes the loaded artifacts.
type ModelInfo struct {
	ClassifierKind string              `json:"classifierKind"`
	Columns        []string            `json:"columns"`
	Categories     map[string][]string `json:"categories"`
	LoanTerms      []float64           `json:"loanTerms"`
	CreditHistory  []float64           `json:"creditHistory"`
}

// Describe returns a copy of the model metadata. Categories are the accepted
// values per categorical field.
func (p *Pipeline) Describe() ModelInfo {
	categories := make(map[string][]string, len(p.encoders))
	for field, enc := range p.encoders {
		categories[field] = enc.Classes()
	}
	return ModelInfo{
		ClassifierKind: p.classifier.Kind(),
		Columns:        append([]string(nil), p.columns...),
		Categories:     categories,
		LoanTerms:      append([]float64(nil), LoanTermOptions...),
		CreditHistory:  append([]float64(nil), CreditHistoryOptions...),
	}
}
