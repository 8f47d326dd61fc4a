package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"duckdice-bet-bot/internal/duckdice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient replays a fixed sequence of bet outcomes and records every
// request it receives.
type scriptedClient struct {
	balance    decimal.Decimal
	balanceErr error
	outcomes   []betOutcome
	requests   []duckdice.BetRequest
}

type betOutcome struct {
	result *duckdice.BetResult
	err    error
}

func (c *scriptedClient) Balance(ctx context.Context, currency string, faucet bool) (decimal.Decimal, error) {
	if c.balanceErr != nil {
		return decimal.Zero, c.balanceErr
	}
	return c.balance, nil
}

func (c *scriptedClient) PlaceBet(ctx context.Context, req duckdice.BetRequest) (*duckdice.BetResult, error) {
	c.requests = append(c.requests, req)
	if len(c.outcomes) == 0 {
		panic("unexpected bet: script exhausted")
	}
	next := c.outcomes[0]
	c.outcomes = c.outcomes[1:]
	return next.result, next.err
}

func loss(amount, balanceAfter string) betOutcome {
	return betOutcome{result: &duckdice.BetResult{
		Won:              false,
		Roll:             decimal.RequireFromString("1"),
		PayoutMultiplier: decimal.RequireFromString("2"),
		Profit:           decimal.RequireFromString(amount).Neg(),
		BalanceAfter:     decimal.RequireFromString(balanceAfter),
	}}
}

func win(profit, balanceAfter string) betOutcome {
	return betOutcome{result: &duckdice.BetResult{
		Won:              true,
		Roll:             decimal.RequireFromString("9000"),
		PayoutMultiplier: decimal.RequireFromString("2"),
		Profit:           decimal.RequireFromString(profit),
		BalanceAfter:     decimal.RequireFromString(balanceAfter),
	}}
}

func transient() betOutcome {
	return betOutcome{err: &duckdice.TransientError{Err: errors.New("connection reset")}}
}

// recordingSink counts sink calls and can simulate persistence failures.
type recordingSink struct {
	appendErr error
	appends   int
	finalized int
	summary   Summary
}

func (s *recordingSink) AppendBetRecord(sessionID string, roundIndex int, wager Wager, result RoundResult, ctx SessionContext) error {
	s.appends++
	return s.appendErr
}

func (s *recordingSink) FinalizeSession(sessionID string, summary Summary) error {
	s.finalized++
	s.summary = summary
	return nil
}

// stubStrategy lets tests script strategy behavior per call.
type stubStrategy struct {
	next      func(ctx SessionContext) (Wager, error)
	nextCalls int
	onResult  func(ctx SessionContext, result RoundResult)
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) NextWager(ctx SessionContext) (Wager, error) {
	s.nextCalls++
	return s.next(ctx)
}

func (s *stubStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	if s.onResult != nil {
		s.onResult(ctx, result)
	}
}

func (s *stubStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string { return "" }

func testOptions(limits StopLimits, sink BetSink) Options {
	return Options{
		Constraints:  testConstraints(),
		Limits:       limits,
		Currency:     "btc",
		RetryBackoff: time.Millisecond,
		Sink:         sink,
	}
}

func newTestEngine(client duckdice.Client, strategy Strategy, opts Options) *Engine {
	return NewEngine(zap.NewNop(), client, strategy, opts)
}

func TestEngine_MartingaleSession(t *testing.T) {
	// Arrange: base 1 at 49.5%, doubling on loss, exit at +1 profit.
	// Scripted loss, loss, win: submitted amounts must be 1, 2, 4 and the
	// balance must track the server's figures exactly.
	client := &scriptedClient{
		balance: dec("100"),
		outcomes: []betOutcome{
			loss("1", "99"),
			loss("2", "97"),
			win("4", "101"),
		},
	}
	strategy, err := NewMartingaleStrategy(Params{
		"base_amount":   "1",
		"multiplier":    "2",
		"chance":        "49.5",
		"target_profit": "1",
	}, testConstraints())
	require.NoError(t, err)
	sink := &recordingSink{}
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, sink))

	// Act
	summary := e.Run(context.Background())

	// Assert
	assert.Equal(t, StopStrategyExit, summary.Reason)
	assert.Equal(t, StateStoppedNormal, e.State())

	require.Len(t, client.requests, 3)
	assert.True(t, client.requests[0].Amount.Equal(dec("1")))
	assert.True(t, client.requests[1].Amount.Equal(dec("2")))
	assert.True(t, client.requests[2].Amount.Equal(dec("4")))

	ctx := summary.Context
	assert.True(t, ctx.CurrentBalance.Equal(dec("101")), "balance must equal the server's figure")
	assert.Equal(t, 3, ctx.BetsPlaced)
	assert.Equal(t, 1, ctx.Wins)
	assert.Equal(t, 2, ctx.Losses)
	assert.Equal(t, 1, ctx.CurrentWinStreak)
	assert.Equal(t, 0, ctx.CurrentLossStreak)
	assert.True(t, ctx.LastWagerAmount.Equal(dec("4")))
	assert.True(t, ctx.TotalWagered.Equal(dec("7")))

	assert.Equal(t, 3, sink.appends)
	assert.Equal(t, 1, sink.finalized)
	assert.Equal(t, StopStrategyExit, sink.summary.Reason)
}

func TestEngine_TransientRetrySucceeds(t *testing.T) {
	// First submit fails transiently, the retry lands: the round counts once.
	client := &scriptedClient{
		balance: dec("100"),
		outcomes: []betOutcome{
			transient(),
			loss("1", "99"),
		},
	}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{MaxBets: intPtr(1)}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopMaxBets, summary.Reason)
	assert.Equal(t, StateStoppedLimit, e.State())
	assert.Len(t, client.requests, 2, "one failed attempt plus one retry")
	assert.Equal(t, 1, summary.Context.BetsPlaced, "round counted once, not twice")
}

func TestEngine_TransientExhaustion(t *testing.T) {
	client := &scriptedClient{
		balance:  dec("100"),
		outcomes: []betOutcome{transient(), transient(), transient()},
	}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	opts := testOptions(StopLimits{}, nil)
	opts.SubmitRetries = 2
	e := newTestEngine(client, strategy, opts)

	summary := e.Run(context.Background())

	assert.Equal(t, StopAPIUnreachable, summary.Reason)
	assert.Equal(t, StateStoppedError, e.State())
	assert.Len(t, client.requests, 3)
	assert.Error(t, summary.Err)
	assert.Equal(t, 0, summary.Context.BetsPlaced)
}

func TestEngine_BusinessErrorFatal(t *testing.T) {
	client := &scriptedClient{
		balance: dec("100"),
		outcomes: []betOutcome{
			{err: &duckdice.BusinessError{Status: 400, Message: "insufficient balance"}},
		},
	}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopAPIError, summary.Reason)
	assert.Equal(t, StateStoppedError, e.State())
	assert.Len(t, client.requests, 1, "business errors are never retried")
}

func TestEngine_MaxBetsZero(t *testing.T) {
	// A zero bet budget stops before any bet is placed.
	client := &scriptedClient{balance: dec("100")}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{MaxBets: intPtr(0)}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopMaxBets, summary.Reason)
	assert.Equal(t, StateStoppedLimit, e.State())
	assert.Empty(t, client.requests)
}

func TestEngine_InsufficientBalanceRejection(t *testing.T) {
	// Balance below the minimum bet: the validator rejects and the session
	// ends normally without touching the API.
	client := &scriptedClient{balance: dec("0.0000001")}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopInsufficientBalance, summary.Reason)
	assert.Equal(t, StateStoppedNormal, e.State())
	assert.Empty(t, client.requests)
}

func TestEngine_StopLossExact(t *testing.T) {
	// Stop-loss -0.2 from 100: the session must end on the round that takes
	// the balance to 80, not one round later.
	client := &scriptedClient{
		balance: dec("100"),
		outcomes: []betOutcome{
			loss("10", "90"),
			loss("10", "80"),
		},
	}
	strategy, err := NewFlatStrategy(Params{"amount": "10"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{StopLossRatio: decPtr("-0.2")}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopLoss, summary.Reason)
	assert.Equal(t, 2, summary.Context.BetsPlaced)
	assert.Len(t, client.requests, 2)
}

func TestEngine_EndSignalIdempotent(t *testing.T) {
	client := &scriptedClient{balance: dec("100")}
	strategy := &stubStrategy{
		next: func(ctx SessionContext) (Wager, error) {
			return Wager{}, ErrSessionDone
		},
	}
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopStrategyExit, summary.Reason)
	assert.Equal(t, 1, strategy.nextCalls, "NextWager must not be called again after EndSignal")
}

func TestEngine_StrategyErrorFatal(t *testing.T) {
	client := &scriptedClient{balance: dec("100")}
	strategy := &stubStrategy{
		next: func(ctx SessionContext) (Wager, error) {
			return Wager{}, errors.New("bad internal state")
		},
	}
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopStrategyError, summary.Reason)
	assert.Equal(t, StateStoppedError, e.State())
	var serr *StrategyError
	assert.ErrorAs(t, summary.Err, &serr)
}

func TestEngine_SinkFailureDoesNotAbort(t *testing.T) {
	client := &scriptedClient{
		balance: dec("100"),
		outcomes: []betOutcome{
			loss("1", "99"),
			loss("1", "98"),
		},
	}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	sink := &recordingSink{appendErr: errors.New("disk full")}
	e := newTestEngine(client, strategy, testOptions(StopLimits{MaxBets: intPtr(2)}, sink))

	summary := e.Run(context.Background())

	assert.Equal(t, StopMaxBets, summary.Reason)
	assert.Equal(t, 2, summary.Context.BetsPlaced, "persistence failures must not stop the loop")
	assert.Equal(t, 2, sink.appends)
}

func TestEngine_UserCancelled(t *testing.T) {
	client := &scriptedClient{balance: dec("100")}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	sink := &recordingSink{}
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, sink))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := e.Run(ctx)

	assert.Equal(t, StopUserCancelled, summary.Reason)
	assert.Equal(t, StateStoppedNormal, e.State())
	assert.Empty(t, client.requests)
	assert.Equal(t, 1, sink.finalized, "finalize still runs on cancellation")
}

func TestEngine_BalanceFetchFailure(t *testing.T) {
	client := &scriptedClient{balanceErr: &duckdice.TransientError{Err: errors.New("timeout")}}
	strategy, err := NewFlatStrategy(Params{"amount": "1"}, testConstraints())
	require.NoError(t, err)
	e := newTestEngine(client, strategy, testOptions(StopLimits{}, nil))

	summary := e.Run(context.Background())

	assert.Equal(t, StopAPIUnreachable, summary.Reason)
	assert.Equal(t, StateStoppedError, e.State())
}

// OnRoundResult must observe the context already updated from the result.
func TestEngine_StrategySeesUpdatedContext(t *testing.T) {
	client := &scriptedClient{
		balance:  dec("100"),
		outcomes: []betOutcome{loss("1", "99")},
	}
	var seen []SessionContext
	strategy := &stubStrategy{
		next: func(ctx SessionContext) (Wager, error) {
			return Wager{Amount: dec("1"), WinChance: dec("49.5"), Direction: DirectionHigh}, nil
		},
		onResult: func(ctx SessionContext, result RoundResult) {
			seen = append(seen, ctx)
		},
	}
	e := newTestEngine(client, strategy, testOptions(StopLimits{MaxBets: intPtr(1)}, nil))

	e.Run(context.Background())

	require.Len(t, seen, 1)
	assert.Equal(t, 1, seen[0].BetsPlaced)
	assert.Equal(t, 1, seen[0].CurrentLossStreak)
	assert.True(t, seen[0].CurrentBalance.Equal(dec("99")))
	assert.True(t, seen[0].LastWagerAmount.Equal(dec("1")))
}
