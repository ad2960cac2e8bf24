// Package assistant implements the conversational layer: classification of
// free text into typed actions and the confirm-before-execute loop.
package assistant

import (
	"context"
	"log"
	"time"

	"example.com/snapfit/internal/domain"
)

const (
	// helpMessage is shown when the oracle cannot map text to an action.
	helpMessage = "I didn't catch that. Try something like \"log 3 glasses of water\" or \"benched 225 for 5\"."
	// oracleFailureMessage is shown when the oracle call itself fails.
	oracleFailureMessage = "Something went wrong, please try again."
)

// Classifier converts raw text into a typed action. Implementations may call
// an external model; the Oracle wrapper owns failure handling.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Action, error)
}

// OracleOption configures optional Oracle behaviour.
type OracleOption func(*Oracle)

// WithTimeout bounds each classification call.
func WithTimeout(d time.Duration) OracleOption {
	return func(o *Oracle) { o.timeout = d }
}

// WithMinConfidence sets the confidence floor below which a classification is
// treated as unknown.
func WithMinConfidence(min float64) OracleOption {
	return func(o *Oracle) { o.minConfidence = min }
}

// WithOracleLogger overrides the logger used for recovered classifier errors.
func WithOracleLogger(logger *log.Logger) OracleOption {
	return func(o *Oracle) { o.logger = logger }
}

// Oracle wraps a Classifier with timeout and failure handling. Parse never
// returns an error: every failure mode collapses to the unknown action, so a
// timeout is indistinguishable from a low-confidence classification.
type Oracle struct {
	classifier    Classifier
	timeout       time.Duration
	minConfidence float64
	logger        *log.Logger
}

// NewOracle constructs an Oracle around the given classifier.
func NewOracle(classifier Classifier, opts ...OracleOption) *Oracle {
	o := &Oracle{
		classifier:    classifier,
		timeout:       10 * time.Second,
		minConfidence: 0.5,
		logger:        log.New(log.Writer(), "[oracle] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Parse classifies raw text into exactly one action.
func (o *Oracle) Parse(ctx context.Context, text string) domain.Action {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	action, err := o.classifier.Classify(ctx, text)
	classificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		o.logger.Printf("classify failed: %v", err)
		recordClassification("error")
		return unknownAction(oracleFailureMessage)
	}

	if action.Kind == domain.ActionUnknown || action.Confidence < o.minConfidence {
		recordClassification("unknown")
		return unknownAction(helpMessage)
	}

	if err := action.Validate(); err != nil {
		o.logger.Printf("classifier returned invalid action (kind=%s): %v", action.Kind, err)
		recordClassification("invalid")
		return unknownAction(helpMessage)
	}

	recordClassification(string(action.Kind))
	return action
}

func unknownAction(message string) domain.Action {
	return domain.Action{
		Kind:         domain.ActionUnknown,
		Confidence:   0,
		Confirmation: message,
	}
}
