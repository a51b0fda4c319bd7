package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/core"
	"mywallet/internal/log"
)

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context, core.AlertEvent) error {
	p.calls++
	return p.err
}

func budgetAlert() core.AlertEvent {
	return core.NewBudgetAlert(1, 6, 2024, decimal.NewFromInt(105), decimal.NewFromInt(100))
}

func TestFanoutPublishesToEverySink(t *testing.T) {
	failing := &countingPublisher{err: errors.New("broker unreachable")}
	ok := &countingPublisher{}
	f := NewFanout(Sink{Name: "amqp", Publisher: failing}, Sink{Name: "log", Publisher: ok})

	err := f.Publish(context.Background(), budgetAlert())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp: broker unreachable")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, []string{"amqp", "log"}, f.Names())
}

func TestFanoutStopsOnCancelledContext(t *testing.T) {
	p := &countingPublisher{}
	f := NewFanout(Sink{Name: "log", Publisher: p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Publish(ctx, budgetAlert())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.calls)
}

func TestFanoutWithoutSinks(t *testing.T) {
	assert.NoError(t, NewFanout().Publish(context.Background(), budgetAlert()))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: log.FormatJSON, Output: &buf, Component: log.ComponentApp})

	require.NoError(t, NewLogPublisher(logger).Publish(context.Background(), budgetAlert()))

	out := buf.String()
	assert.Contains(t, out, `"msg":"Alert raised"`)
	assert.Contains(t, out, `"alert_type":"BUDGET_ALERT"`)
	assert.Contains(t, out, `"spent":105`)
}
