package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hazyhaar/lexicheck/pkg/judge"
	"github.com/hazyhaar/lexicheck/pkg/kit"
	"github.com/hazyhaar/lexicheck/pkg/lang"
	"github.com/hazyhaar/lexicheck/pkg/match"
	"github.com/hazyhaar/lexicheck/pkg/observe"
	"github.com/hazyhaar/lexicheck/pkg/usage"
	"github.com/hazyhaar/lexicheck/pkg/validate"
	"github.com/mark3labs/mcp-go/server"
)

// ExplainStrict is returned for unresolved answers when no judge is configured.
const ExplainStrict = "No match (strict mode)"

// DefaultJudgeTimeout bounds one judge call when Deps.JudgeTimeout is zero.
const DefaultJudgeTimeout = 15 * time.Second

// Deps are the collaborators shared by the HTTP and MCP transports.
type Deps struct {
	// Judge decides unresolved answers. Nil means strict mode.
	Judge judge.Judge
	// Usage meters judged answers. Nil disables metering.
	Usage *usage.Store
	// MonthlyLimit is the per-caller judged answers per 30-day window; 0 is unlimited.
	MonthlyLimit int
	JudgeTimeout time.Duration
	Metrics      *observe.Metrics
	Logger       *slog.Logger
	// MCP, when set, is mounted at /mcp.
	MCP *server.MCPServer
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = observe.DefaultMetrics()
	}
	if d.JudgeTimeout <= 0 {
		d.JudgeTimeout = DefaultJudgeTimeout
	}
	return d
}

// errInvalid marks caller mistakes; HTTP maps it to 400.
var errInvalid = errors.New("invalid request")

// QuotaError is returned when the caller's judged answers are used up.
type QuotaError struct {
	Quota usage.Quota
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("Monthly limit reached (%d). Resets %s.", e.Quota.Limit, e.Quota.ResetAt.Format("2006-01-02"))
}

// Shared request/response types used by both HTTP and MCP transports.

var requestRules = validator.New(validator.WithRequiredStructEnabled())

type answerReq struct {
	UserAnswer     string `json:"userAnswer" validate:"required,max=500"`
	CorrectAnswer  string `json:"correctAnswer" validate:"required,max=500"`
	TargetWord     string `json:"targetWord,omitempty" validate:"max=200"`
	WordType       string `json:"wordType,omitempty" validate:"max=50"`
	Direction      string `json:"direction,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
	// PolishWord is the legacy name of TargetWord.
	PolishWord string `json:"polishWord,omitempty" validate:"max=200"`
}

// check reports missing or oversized fields. Unknown directions and
// languages are not errors; they fall back to defaults.
func (r *answerReq) check() error {
	if err := requestRules.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: %s failed %q", errInvalid, f.Field(), f.Tag())
		}
		return fmt.Errorf("%w: %v", errInvalid, err)
	}
	return nil
}

// Languages assumed for requests from clients that predate the language fields.
const (
	defaultTarget = lang.PL
	defaultNative = lang.EN
)

func (r *answerReq) options() match.Options {
	target, native := r.languages()
	return match.Options{
		Direction:      match.ParseDirection(r.Direction),
		TargetLanguage: target,
		NativeLanguage: native,
	}
}

// languages resolves the request's language pair. Missing languages take the
// defaults, an unsupported target or a pair naming the same language resets
// both, and an unsupported native resets only the native side.
func (r *answerReq) languages() (target, native lang.Code) {
	target, native = defaultTarget, defaultNative
	if r.TargetLanguage != "" {
		c, ok := lang.Parse(r.TargetLanguage)
		if !ok {
			return defaultTarget, defaultNative
		}
		target = c
	}
	if r.NativeLanguage != "" {
		if c, ok := lang.Parse(r.NativeLanguage); ok {
			native = c
		} else {
			return target, defaultNative
		}
	}
	if target == native {
		return defaultTarget, defaultNative
	}
	return target, native
}

func (r *answerReq) targetWord() string {
	if r.TargetWord != "" {
		return r.TargetWord
	}
	return r.PolishWord
}

type matchResponse struct {
	Accepted          bool   `json:"accepted"`
	Stage             string `json:"stage"`
	NormalizedUser    string `json:"normalizedUser"`
	NormalizedCorrect string `json:"normalizedCorrect"`
}

type normalizeReq struct {
	Text string `json:"text" validate:"max=500"`
}

type normalizeResponse struct {
	Normalized   string   `json:"normalized"`
	Alternatives []string `json:"alternatives"`
}

type languageInfo struct {
	lang.Info
	Articles   bool `json:"articles"`
	VerbPrefix bool `json:"verbPrefix"`
}

type languagesResponse struct {
	Languages []languageInfo `json:"languages"`
}

type endpoints struct {
	validateAnswer kit.Endpoint
	localMatch     kit.Endpoint
	normalize      kit.Endpoint
	listLanguages  kit.Endpoint
	usage          kit.Endpoint
}

func newEndpoints(d Deps) *endpoints {
	return &endpoints{
		validateAnswer: kit.Chain(kit.Logging(d.Logger, "validate_answer"), withTimeout(d.JudgeTimeout))(validateAnswerEndpoint(d)),
		localMatch:     kit.Logging(d.Logger, "local_match")(localMatchEndpoint(d)),
		normalize:      normalizeEndpoint(),
		listLanguages:  listLanguagesEndpoint(),
		usage:          kit.Logging(d.Logger, "usage")(usageEndpoint(d)),
	}
}

func withTimeout(timeout time.Duration) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, request)
		}
	}
}

// validateAnswerEndpoint runs exact and local matching for free, then spends
// one unit of the caller's quota on the judge.
func validateAnswerEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*answerReq)
		if err := req.check(); err != nil {
			return nil, err
		}

		if match.Normalize(req.UserAnswer) == match.Normalize(req.CorrectAnswer) {
			d.Metrics.RecordValidation(ctx, true, observe.SourceExact)
			return validate.Result{Accepted: true, Explanation: validate.ExplainExact}, nil
		}
		opts := req.options()
		if v, stage := match.Explain(req.UserAnswer, req.CorrectAnswer, opts); v == match.Accepted {
			d.Metrics.RecordLocalStage(ctx, string(stage))
			d.Metrics.RecordValidation(ctx, true, observe.SourceLocal)
			return validate.Result{Accepted: true, Explanation: validate.ExplainClose}, nil
		}

		user := kit.GetUserID(ctx)
		if d.Usage != nil {
			q, err := d.Usage.Check(ctx, user, usage.TypeAnswerValidation, d.MonthlyLimit)
			if err != nil {
				d.Logger.WarnContext(ctx, "usage check failed, allowing", "user_id", user, "error", err)
			}
			if !q.Allowed {
				d.Metrics.RecordQuotaDenied(ctx, usage.TypeAnswerValidation)
				return nil, &QuotaError{Quota: q}
			}
		}

		if d.Judge == nil {
			d.Metrics.RecordValidation(ctx, false, observe.SourceLocal)
			return validate.Result{Accepted: false, Explanation: ExplainStrict}, nil
		}

		start := time.Now()
		v, err := d.Judge.Judge(ctx, &judge.Request{
			UserAnswer:     req.UserAnswer,
			CorrectAnswer:  req.CorrectAnswer,
			TargetWord:     req.targetWord(),
			WordType:       req.WordType,
			Direction:      opts.Direction,
			TargetLanguage: opts.TargetLanguage,
			NativeLanguage: opts.NativeLanguage,
		})
		d.Metrics.RecordRemoteDuration(ctx, time.Since(start))
		if err != nil {
			d.Logger.WarnContext(ctx, "judge failed", "user_id", user, "error", err)
			d.Metrics.RecordRemoteError(ctx, observe.ErrorTransport)
			d.Metrics.RecordValidation(ctx, false, observe.SourceFallback)
			return validate.Result{Accepted: false, Explanation: validate.ExplainValidation}, nil
		}

		if d.Usage != nil {
			if err := d.Usage.Increment(ctx, user, usage.TypeAnswerValidation, 1); err != nil {
				d.Logger.WarnContext(ctx, "usage tracking failed", "user_id", user, "error", err)
			}
		}
		d.Metrics.RecordValidation(ctx, v.Accepted, observe.SourceJudge)
		return validate.Result{Accepted: v.Accepted, Explanation: v.Explanation}, nil
	}
}

func localMatchEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*answerReq)
		if err := req.check(); err != nil {
			return nil, err
		}
		v, stage := match.Explain(req.UserAnswer, req.CorrectAnswer, req.options())
		if v == match.Accepted {
			d.Metrics.RecordLocalStage(ctx, string(stage))
		}
		return matchResponse{
			Accepted:          v == match.Accepted,
			Stage:             string(stage),
			NormalizedUser:    match.Normalize(req.UserAnswer),
			NormalizedCorrect: match.Normalize(req.CorrectAnswer),
		}, nil
	}
}

func normalizeEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		if err := requestRules.Struct(req); err != nil {
			return nil, fmt.Errorf("%w: text too long", errInvalid)
		}
		alts := match.SplitAlternatives(req.Text)
		for i := range alts {
			alts[i] = match.Normalize(alts[i])
		}
		return normalizeResponse{
			Normalized:   match.Normalize(req.Text),
			Alternatives: alts,
		}, nil
	}
}

func listLanguagesEndpoint() kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		all := lang.All()
		out := make([]languageInfo, len(all))
		for i, info := range all {
			c := lang.MustParse(info.Code)
			out[i] = languageInfo{Info: info, Articles: match.HasArticles(c), VerbPrefix: match.HasVerbPrefix(c)}
		}
		return languagesResponse{Languages: out}, nil
	}
}

func usageEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		if d.Usage == nil {
			return usage.Quota{Allowed: true}, nil
		}
		return d.Usage.Check(ctx, kit.GetUserID(ctx), usage.TypeAnswerValidation, d.MonthlyLimit)
	}
}
