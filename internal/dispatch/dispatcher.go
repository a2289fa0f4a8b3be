package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"dmrelay/internal/gate"
	"dmrelay/internal/platform"
	"dmrelay/internal/resolver"
)

// Resolver is the membership resolution dependency.
type Resolver interface {
	Resolve(ctx context.Context, guildID, userID string) (*resolver.Resolution, error)
}

// Sender delivers direct messages on the platform session.
type Sender interface {
	SendDirectMessage(ctx context.Context, userID, content string) error
}

// Config holds delivery pipeline settings.
type Config struct {
	// GuildID is the guild used when a request names none.
	GuildID string

	// RequiredRole is the guild role a recipient must hold.
	RequiredRole string

	// DefaultMessage is sent when a request carries no message body.
	DefaultMessage string

	// MaxInFlight bounds concurrent deliveries. Zero means unbounded,
	// which matches the observed contract; set it in production.
	MaxInFlight int
}

// Request is one webhook-triggered delivery. It is acted on at most once.
type Request struct {
	UserID  string
	GuildID string
	Message string
}

// Dispatcher runs the resolve → gate → send pipeline for each request on a
// detached goroutine. Scheduling never blocks and never fails; every
// failure inside the pipeline is terminal to that one attempt, observable
// only through logs.
type Dispatcher struct {
	cfg      Config
	resolver Resolver
	sender   Sender
	logger   *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

func New(cfg Config, res Resolver, sender Sender, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		resolver: res,
		sender:   sender,
		logger:   logger,
	}
	if cfg.MaxInFlight > 0 {
		d.sem = make(chan struct{}, cfg.MaxInFlight)
	}
	return d
}

// Dispatch schedules the delivery pipeline for req and returns immediately.
// The HTTP response path is never delayed by delivery.
func (d *Dispatcher) Dispatch(req Request) {
	if req.GuildID == "" {
		req.GuildID = d.cfg.GuildID
	}
	if req.Message == "" {
		req.Message = d.cfg.DefaultMessage
	}

	id := uuid.NewString()
	d.wg.Add(1)
	go d.deliver(id, req)
}

// Drain waits for in-flight deliveries to finish, or until ctx expires.
// New dispatches are not blocked; call this only during shutdown.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (d *Dispatcher) deliver(id string, req Request) {
	defer d.wg.Done()

	logger := d.logger.With("dispatch_id", id, "user_id", req.UserID, "guild_id", req.GuildID)

	// Nothing from one delivery attempt may escape and take down the
	// process or the shared session.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in delivery pipeline", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if d.sem != nil {
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
	}

	// Once scheduled, a delivery runs to completion; there is no
	// cancellation tied to the originating request.
	outcome, err := d.run(context.Background(), req)

	switch outcome {
	case OutcomeDelivered:
		logger.Info("delivery complete", "outcome", outcome)
	default:
		if err != nil {
			logger.Warn("delivery failed", "outcome", outcome, "error", err)
		} else {
			logger.Warn("delivery failed", "outcome", outcome)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, req Request) (Outcome, error) {
	res, err := d.resolver.Resolve(ctx, req.GuildID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrGuildNotFound):
			return OutcomeGuildNotFound, nil
		case errors.Is(err, resolver.ErrMemberNotFound):
			return OutcomeNotAMember, nil
		default:
			return OutcomeTransientError, err
		}
	}

	if !gate.Permits(res.Guild, res.Member, d.cfg.RequiredRole) {
		return OutcomeMissingRole, nil
	}

	if err := d.sender.SendDirectMessage(ctx, req.UserID, req.Message); err != nil {
		if errors.Is(err, platform.ErrForbidden) {
			return OutcomeRecipientUnreachable, nil
		}
		return OutcomeTransientError, err
	}

	d.logger.Debug("message sent", "user_id", req.UserID, "display_name", res.Member.DisplayName, "source", res.Source)
	return OutcomeDelivered, nil
}
