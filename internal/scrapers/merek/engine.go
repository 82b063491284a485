package merek

import (
	"context"
	"errors"
	"fmt"

	"merek-automation/internal/components/assert"
	"merek-automation/internal/components/chrono"
	"merek-automation/internal/components/telemetry"
	"merek-automation/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_engine_fetch_login_challenge = "engine.fetch-login-challenge"
	report_engine_login                 = "engine.login"
	report_engine_recognize_captcha     = "engine.recognize-captcha"
	report_engine_save_general          = "engine.save-general"
	report_engine_save_applicant        = "engine.save-applicant"
	report_engine_save_representative   = "engine.save-representative"
	report_engine_add_priority          = "engine.add-priority"
	report_engine_list_priorities       = "engine.list-priorities"
	report_engine_delete_priority       = "engine.delete-priority"
	report_engine_upload_brand          = "engine.upload-brand"
	report_engine_search_applications   = "engine.search-applications"
)

type EngineOptions struct {
	Portal config.PortalConfig
	// Recognizer reads captcha images, it is only required by LoginWithRecognizer
	// and RecognizeCaptcha.
	Recognizer Recognizer
	Telemetry  telemetry.API
	// DumpOutput receives every raw http exchange, it can be nil.
	DumpOutput telemetry.InstrumentOutput
	// Clock defaults to the portal's wall clock.
	Clock chrono.API
}

// Engine runs the steps of filing a trademark application on the portal. It keeps
// no state between calls: every method takes the caller's session and returns the
// session to use next inside the Outcome, so it is safe for concurrent use. Calls
// that share a session and application must still be made one at a time since each
// one spends the application's current csrf token.
type Engine struct {
	client     *client
	recognizer Recognizer
	tel        telemetry.API
	tracer     trace.Tracer
	outcomes   metric.Int64Counter
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	assert.NotNil(opts.Telemetry, "telemetry")
	assert.NotEmptyStr(opts.Portal.BaseUrl, "portal base url")

	clock := opts.Clock
	if clock == nil {
		standard, err := chrono.NewStandardImpl()
		if err != nil {
			return nil, fmt.Errorf("load portal timezone: %w", err)
		}
		clock = standard
	}

	tel := telemetry.NewScopedAPI("merek", opts.Telemetry)
	c, err := newClient(opts.Portal, clock, tel, opts.DumpOutput)
	if err != nil {
		return nil, err
	}

	outcomes, err := telemetry.Meter("merek").Int64Counter(
		"merek.step.outcomes",
		metric.WithDescription("Outcomes of portal workflow steps by step and kind."),
	)
	if err != nil {
		return nil, fmt.Errorf("create outcome counter: %w", err)
	}

	return &Engine{
		client:     c,
		recognizer: opts.Recognizer,
		tel:        tel,
		tracer:     telemetry.Tracer("merek"),
		outcomes:   outcomes,
	}, nil
}

// run executes one step inside a span and turns its result into an Outcome. The
// caller only ever sees the stable outcome message, the cause goes to telemetry.
func run[T any](
	ctx context.Context,
	e *Engine,
	op string,
	step func(ctx context.Context) (T, Session, error),
) Outcome[T] {
	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()

	value, next, err := step(ctx)
	outcome := toOutcome(next, value, err)

	kind := attribute.String("merek.outcome", outcome.Kind.String())
	span.SetAttributes(kind)
	e.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("merek.step", op), kind))

	if err == nil {
		return outcome
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome.Message)

	switch outcome.Kind {
	case OUTCOME_VALIDATION_FAILED:
		e.tel.ReportDebug(op, "reason", outcome.Message)
	case OUTCOME_AUTHENTICATION_FAILED, OUTCOME_SESSION_EXPIRED:
		e.tel.ReportWarning(op, err)
	default:
		var parseErr *ParseError
		if errors.As(err, &parseErr) || errors.Is(err, ErrRecognitionFailed) {
			e.tel.ReportBroken(op, err)
		} else {
			e.tel.ReportWarning(op, err)
		}
	}
	return outcome
}

// CanRecognizeCaptcha reports whether a recognizer is configured.
func (e *Engine) CanRecognizeCaptcha() bool {
	return e.recognizer != nil
}

// FetchLoginChallenge opens a fresh login page. The returned session holds the
// pre-login cookies and the login form's csrf token.
func (e *Engine) FetchLoginChallenge(ctx context.Context) Outcome[CaptchaChallenge] {
	return run(ctx, e, report_engine_fetch_login_challenge,
		func(ctx context.Context) (CaptchaChallenge, Session, error) {
			return e.client.fetchLoginChallenge(ctx)
		},
	)
}

// Login submits credentials and a captcha answer for a challenge fetched with
// FetchLoginChallenge. Each challenge can only be submitted once.
func (e *Engine) Login(ctx context.Context, req LoginRequest) Outcome[LoginResult] {
	return run(ctx, e, report_engine_login,
		func(ctx context.Context) (LoginResult, Session, error) {
			return e.client.login(ctx, req)
		},
	)
}

// LoginWithRecognizer fetches a challenge, has the configured recognizer read the
// captcha and logs in with it.
func (e *Engine) LoginWithRecognizer(ctx context.Context, username, password string) Outcome[LoginResult] {
	return run(ctx, e, report_engine_login,
		func(ctx context.Context) (LoginResult, Session, error) {
			return e.client.loginWithRecognizer(ctx, e.recognizer, username, password)
		},
	)
}

// RecognizeCaptcha reads the text of a captcha image (a data uri).
func (e *Engine) RecognizeCaptcha(ctx context.Context, image string) Outcome[string] {
	return run(ctx, e, report_engine_recognize_captcha,
		func(ctx context.Context) (string, Session, error) {
			if e.recognizer == nil {
				return "", Session{}, validationFailed("no captcha recognizer is configured")
			}
			if image == "" {
				return "", Session{}, validationFailed("captcha image is required")
			}
			text, err := solveCaptcha(ctx, e.recognizer, image)
			if err != nil {
				return "", Session{}, upstreamError(err)
			}
			return text, Session{}, nil
		},
	)
}

func (e *Engine) SaveGeneral(ctx context.Context, session Session, form GeneralForm) Outcome[GeneralResult] {
	return run(ctx, e, report_engine_save_general,
		func(ctx context.Context) (GeneralResult, Session, error) {
			return e.client.saveGeneral(ctx, session, form)
		},
	)
}

func (e *Engine) SaveApplicant(ctx context.Context, session Session, form ApplicantForm) Outcome[SubmitResult] {
	return run(ctx, e, report_engine_save_applicant,
		func(ctx context.Context) (SubmitResult, Session, error) {
			return e.client.saveApplicant(ctx, session, form)
		},
	)
}

// SaveRepresentative sends an already form-encoded representative payload.
func (e *Engine) SaveRepresentative(
	ctx context.Context,
	session Session,
	applicationNo, payload string,
) Outcome[SubmitResult] {
	return run(ctx, e, report_engine_save_representative,
		func(ctx context.Context) (SubmitResult, Session, error) {
			return e.client.saveRepresentative(ctx, session, applicationNo, payload)
		},
	)
}

func (e *Engine) AddPriority(ctx context.Context, session Session, claim PriorityClaim) Outcome[SubmitResult] {
	return run(ctx, e, report_engine_add_priority,
		func(ctx context.Context) (SubmitResult, Session, error) {
			return e.client.addPriority(ctx, session, claim)
		},
	)
}

func (e *Engine) ListPriorities(ctx context.Context, session Session, applicationNo string) Outcome[[]PriorityRecord] {
	return run(ctx, e, report_engine_list_priorities,
		func(ctx context.Context) ([]PriorityRecord, Session, error) {
			return e.client.listPriorities(ctx, session, applicationNo)
		},
	)
}

func (e *Engine) DeletePriority(
	ctx context.Context,
	session Session,
	applicationNo, priorityId string,
) Outcome[SubmitResult] {
	return run(ctx, e, report_engine_delete_priority,
		func(ctx context.Context) (SubmitResult, Session, error) {
			return e.client.deletePriority(ctx, session, applicationNo, priorityId)
		},
	)
}

// UploadBrand fails with OUTCOME_VALIDATION_FAILED before contacting the portal
// when the disclaimer is not accepted.
func (e *Engine) UploadBrand(ctx context.Context, session Session, upload BrandUpload) Outcome[SubmitResult] {
	return run(ctx, e, report_engine_upload_brand,
		func(ctx context.Context) (SubmitResult, Session, error) {
			return e.client.uploadBrand(ctx, session, upload)
		},
	)
}

func (e *Engine) SearchApplications(
	ctx context.Context,
	session Session,
	query ApplicationListQuery,
) Outcome[ApplicationListResult] {
	return run(ctx, e, report_engine_search_applications,
		func(ctx context.Context) (ApplicationListResult, Session, error) {
			return e.client.searchApplications(ctx, session, query)
		},
	)
}
