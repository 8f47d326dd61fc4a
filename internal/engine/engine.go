package engine

import (
	"context"
	"errors"
	"time"

	"duckdice-bet-bot/internal/duckdice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the engine's lifecycle state. All stopped states are terminal.
type State int

const (
	StateInit State = iota
	StateRunning
	StateStoppedNormal
	StateStoppedLimit
	StateStoppedError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateStoppedNormal:
		return "stopped_normal"
	case StateStoppedLimit:
		return "stopped_limit"
	case StateStoppedError:
		return "stopped_error"
	default:
		return "unknown"
	}
}

// Options bundles the per-session configuration of an engine.
type Options struct {
	Constraints   PlatformConstraints
	Limits        StopLimits
	Currency      string
	Faucet        bool
	BetDelay      time.Duration
	SubmitRetries int           // same-call retries on transient submit failures
	RetryBackoff  time.Duration // base backoff, doubled per attempt
	Sink          BetSink
	Emitter       EventEmitter
}

// Engine drives one betting session: strategy decision, validation, submit,
// result application and stop-condition checks, one round at a time. A single
// round is in flight at any moment; independent sessions run as independent
// engines.
type Engine struct {
	logger   *zap.Logger
	client   duckdice.Client
	strategy Strategy
	opts     Options
	state    State
}

// NewEngine creates a new betting engine.
func NewEngine(logger *zap.Logger, client duckdice.Client, strategy Strategy, opts Options) *Engine {
	if opts.SubmitRetries <= 0 {
		opts.SubmitRetries = 2
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	return &Engine{
		logger:   logger,
		client:   client,
		strategy: strategy,
		opts:     opts,
		state:    StateInit,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Run executes the session until a terminal state and returns its summary.
// Business and network conditions never escape as errors; they become a
// StopReason in the summary.
func (e *Engine) Run(ctx context.Context) *Summary {
	balance, err := e.client.Balance(ctx, e.opts.Currency, e.opts.Faucet)
	if err != nil {
		e.logger.Error("Failed to fetch starting balance", zap.Error(err))
		e.state = StateStoppedError
		reason := StopAPIUnreachable
		if !duckdice.IsTransient(err) {
			reason = StopAPIError
		}
		return &Summary{
			SessionID: uuid.NewString(),
			Strategy:  e.strategy.Name(),
			Reason:    reason,
			Err:       err,
		}
	}

	sctx := SessionContext{
		SessionID:       uuid.NewString(),
		Currency:        e.opts.Currency,
		StartingBalance: balance,
		CurrentBalance:  balance,
		SessionStart:    time.Now(),
	}

	e.state = StateRunning
	e.logger.Info("Session started",
		zap.String("session_id", sctx.SessionID),
		zap.String("strategy", e.strategy.Name()),
		zap.String("currency", sctx.Currency),
		zap.String("starting_balance", balance.String()),
	)
	if e.opts.Emitter != nil {
		e.opts.Emitter.SessionStarted(sctx, e.strategy.Name())
	}

	reason, endState, runErr := e.loop(ctx, &sctx)
	e.state = endState

	note := e.strategy.OnSessionEnd(sctx, reason)
	summary := &Summary{
		SessionID:    sctx.SessionID,
		Strategy:     e.strategy.Name(),
		Reason:       reason,
		Context:      sctx,
		StrategyNote: note,
		Err:          runErr,
	}

	if e.opts.Sink != nil {
		if err := e.opts.Sink.FinalizeSession(sctx.SessionID, *summary); err != nil {
			e.logger.Error("Failed to finalize session record", zap.Error(err))
		}
	}
	if e.opts.Emitter != nil {
		e.opts.Emitter.SessionEnded(*summary)
	}

	e.logger.Info("Session ended",
		zap.String("session_id", sctx.SessionID),
		zap.String("reason", string(reason)),
		zap.String("state", endState.String()),
		zap.Int("bets_placed", sctx.BetsPlaced),
		zap.String("profit", sctx.Profit().String()),
	)
	return summary
}

// loop is the round-trip body, repeated while running.
func (e *Engine) loop(ctx context.Context, sctx *SessionContext) (StopReason, State, error) {
	for {
		// Cancellation is checked before each round begins.
		select {
		case <-ctx.Done():
			return StopUserCancelled, StateStoppedNormal, nil
		default:
		}

		// Limits are also checked before the first round so a zero bet
		// budget stops the session without placing anything.
		if reason, hit := CheckLimits(*sctx, e.opts.Limits, time.Now()); hit {
			e.emitLimitHit(*sctx, reason)
			return reason, StateStoppedLimit, nil
		}

		proposed, err := e.strategy.NextWager(*sctx)
		if errors.Is(err, ErrSessionDone) {
			return StopStrategyExit, StateStoppedNormal, nil
		}
		if err != nil {
			var serr *StrategyError
			if !errors.As(err, &serr) {
				err = &StrategyError{Strategy: e.strategy.Name(), Err: err}
			}
			e.logger.Error("Strategy failed", zap.Error(err))
			return StopStrategyError, StateStoppedError, err
		}

		validated, notes, rejection := Validate(proposed, *sctx, e.opts.Constraints)
		for _, note := range notes {
			e.logger.Info("Wager adjusted", zap.String("note", note))
		}
		if rejection != nil {
			e.logger.Info("No valid wager possible",
				zap.String("reason", string(rejection.Reason)),
				zap.String("detail", rejection.Detail),
			)
			return rejection.Reason, StateStoppedNormal, nil
		}

		result, err := e.submit(ctx, validated)
		if err != nil {
			if ctx.Err() != nil {
				return StopUserCancelled, StateStoppedNormal, nil
			}
			var berr *duckdice.BusinessError
			if errors.As(err, &berr) {
				// Local validation is advisory; the server is authoritative.
				e.logger.Error("Server rejected bet", zap.Error(err))
				return StopAPIError, StateStoppedError, err
			}
			e.logger.Error("Bet submit failed after retries", zap.Error(err))
			return StopAPIUnreachable, StateStoppedError, err
		}

		// Context first, strategy second: OnRoundResult must see the state
		// this result produced.
		sctx.applyResult(validated, *result)
		e.strategy.OnRoundResult(*sctx, *result)

		e.record(*sctx, validated, *result)

		if reason, hit := CheckLimits(*sctx, e.opts.Limits, time.Now()); hit {
			e.emitLimitHit(*sctx, reason)
			return reason, StateStoppedLimit, nil
		}

		if e.opts.BetDelay > 0 {
			select {
			case <-ctx.Done():
				return StopUserCancelled, StateStoppedNormal, nil
			case <-time.After(e.opts.BetDelay):
			}
		}
	}
}

// submit places one validated wager, retrying transient failures a bounded
// number of times with exponential backoff. The client's mirror failover
// happens underneath each attempt.
func (e *Engine) submit(ctx context.Context, w Wager) (*RoundResult, error) {
	var lastErr error
	backoff := e.opts.RetryBackoff

	for attempt := 0; attempt <= e.opts.SubmitRetries; attempt++ {
		res, err := e.client.PlaceBet(ctx, duckdice.BetRequest{
			Currency: e.opts.Currency,
			Amount:   w.Amount,
			Chance:   w.WinChance,
			High:     w.Direction == DirectionHigh,
			Faucet:   e.opts.Faucet,
		})
		if err == nil {
			return &RoundResult{
				Won:              res.Won,
				Roll:             res.Roll,
				PayoutMultiplier: res.PayoutMultiplier,
				Profit:           res.Profit,
				BalanceAfter:     res.BalanceAfter,
			}, nil
		}

		if !duckdice.IsTransient(err) {
			return nil, err
		}
		lastErr = err
		if attempt == e.opts.SubmitRetries {
			break
		}

		e.logger.Warn("Transient submit failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}

	return nil, lastErr
}

// record sends the round to the sink and emitter. Neither can abort the loop.
func (e *Engine) record(sctx SessionContext, w Wager, r RoundResult) {
	if e.opts.Sink != nil {
		if err := e.opts.Sink.AppendBetRecord(sctx.SessionID, sctx.BetsPlaced, w, r, sctx); err != nil {
			e.logger.Error("Failed to persist bet record", zap.Error(err))
		}
	}
	if e.opts.Emitter != nil {
		e.opts.Emitter.RoundCompleted(sctx, w, r)
	}
}

func (e *Engine) emitLimitHit(sctx SessionContext, reason StopReason) {
	if e.opts.Emitter != nil {
		e.opts.Emitter.LimitHit(sctx, reason)
	}
}
