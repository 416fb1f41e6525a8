// Package validate turns a learner's answer into a verdict: free local checks
// first, one remote round trip when they are inconclusive, and a local
// fallback whenever the remote side is unavailable.
//
// Validate never returns an error. A learner always gets a verdict; under
// network failure a false negative is preferred over a blocked screen.
package validate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hazyhaar/lexicheck/pkg/match"
	"github.com/hazyhaar/lexicheck/pkg/observe"
)

// Explanations returned by the service.
const (
	ExplainExact      = "Exact match"
	ExplainClose      = "Close match"
	ExplainValidated  = "Validated"
	ExplainNoMatch    = "No match"
	ExplainValidation = "Validation error"
)

// Result is the verdict handed back to the caller.
type Result struct {
	Accepted     bool   `json:"accepted"`
	Explanation  string `json:"explanation"`
	RateLimitHit bool   `json:"rateLimitHit,omitempty"`
}

// Options is the per-call context: the match options plus what the remote
// validator can use to judge synonyms.
type Options struct {
	match.Options
	TargetWord string
	WordType   string
}

// Remote is the semantic validator behind the local checks. *Client implements it.
type Remote interface {
	Validate(ctx context.Context, req *Request) (*Response, error)
}

// Service is the public entry point. It holds no per-call state and is safe
// for concurrent use.
type Service struct {
	remote  Remote
	logger  *slog.Logger
	metrics *observe.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metric instruments. Default is observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a Service. remote may be nil, in which case unresolved
// answers are rejected locally.
func NewService(remote Remote, opts ...ServiceOption) *Service {
	s := &Service{remote: remote}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Validate decides whether userAnswer should be accepted for correctAnswer.
// At most one network round trip happens per call.
func (s *Service) Validate(ctx context.Context, userAnswer, correctAnswer string, opts Options) Result {
	exact := match.Normalize(userAnswer) == match.Normalize(correctAnswer)
	if exact {
		s.metrics.RecordValidation(ctx, true, observe.SourceExact)
		return Result{Accepted: true, Explanation: ExplainExact}
	}

	if v, stage := match.Explain(userAnswer, correctAnswer, opts.Options); v == match.Accepted {
		s.metrics.RecordLocalStage(ctx, string(stage))
		s.metrics.RecordValidation(ctx, true, observe.SourceLocal)
		return Result{Accepted: true, Explanation: ExplainClose}
	}

	if s.remote == nil {
		s.metrics.RecordValidation(ctx, false, observe.SourceLocal)
		return fallback(exact, ExplainNoMatch)
	}

	start := time.Now()
	resp, err := s.remote.Validate(ctx, &Request{
		UserAnswer:     userAnswer,
		CorrectAnswer:  correctAnswer,
		TargetWord:     opts.TargetWord,
		WordType:       opts.WordType,
		Direction:      opts.Direction.String(),
		TargetLanguage: opts.TargetLanguage.String(),
		NativeLanguage: opts.NativeLanguage.String(),
	})
	s.metrics.RecordRemoteDuration(ctx, time.Since(start))

	var statusErr *StatusError
	switch {
	case err == nil:
		res := Result{Accepted: resp.Accepted, Explanation: resp.Explanation}
		if res.Explanation == "" {
			res.Explanation = ExplainNoMatch
			if res.Accepted {
				res.Explanation = ExplainValidated
			}
		}
		s.metrics.RecordValidation(ctx, res.Accepted, observe.SourceRemote)
		return res

	case errors.Is(err, ErrRateLimited):
		s.logger.InfoContext(ctx, "remote validator rate limited, using exact match")
		s.metrics.RecordRemoteError(ctx, observe.ErrorRateLimited)
		s.metrics.RecordValidation(ctx, exact, observe.SourceFallback)
		res := fallback(exact, ExplainNoMatch)
		res.RateLimitHit = true
		return res

	case errors.As(err, &statusErr):
		s.logger.WarnContext(ctx, "remote validator failed, using exact match", "status", statusErr.Code)
		s.metrics.RecordRemoteError(ctx, observe.ErrorStatus)
		s.metrics.RecordValidation(ctx, exact, observe.SourceFallback)
		return fallback(exact, ExplainNoMatch)

	default:
		s.logger.WarnContext(ctx, "remote validator unreachable, using exact match", "error", err)
		s.metrics.RecordRemoteError(ctx, observe.ErrorTransport)
		s.metrics.RecordValidation(ctx, exact, observe.SourceFallback)
		return fallback(exact, ExplainValidation)
	}
}

// fallback is the free exact-match verdict used when the remote side cannot answer.
func fallback(exact bool, miss string) Result {
	if exact {
		return Result{Accepted: true, Explanation: ExplainExact}
	}
	return Result{Accepted: false, Explanation: miss}
}
