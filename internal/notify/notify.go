// Package notify delivers alert events to their sinks: the application log,
// the websocket hub and any other ports.AlertPublisher.
package notify

import (
	"context"
	"errors"
	"fmt"

	"mywallet/internal/core"
	"mywallet/internal/log"
	"mywallet/internal/ports"
)

// LogPublisher writes every alert to the log. It is the default sink.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogPublisher{logger: logger.WithComponent(log.ComponentAlert)}
}

func (p *LogPublisher) Publish(ctx context.Context, ev core.AlertEvent) error {
	args := []any{log.FieldAlertType, ev.Type}
	for k, v := range ev.Envelope()["data"].(map[string]any) {
		args = append(args, k, v)
	}
	p.logger.InfoContext(ctx, "Alert raised", args...)
	return nil
}

// Sink is a named publisher.
type Sink struct {
	Name      string
	Publisher ports.AlertPublisher
}

// Fanout publishes each event to every sink in order. A failing sink does
// not stop the others.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(ctx context.Context, ev core.AlertEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if err := s.Publisher.Publish(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the configured sinks.
func (f *Fanout) Names() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name
	}
	return names
}
