package support

import (
	"context"
	"time"

	"addisstay/internal/app/outbox"
	"addisstay/internal/app/uow"
	"addisstay/internal/domain/shared/events"
)

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one.
// The returned cleanup is nil when the unit was reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// Release runs cleanup when it is set.
func Release(cleanup func()) {
	if cleanup != nil {
		cleanup()
	}
}

// PublishEvents moves pending aggregate events into the unit outbox.
func PublishEvents(ctx context.Context, unit uow.UnitOfWork, encoder outbox.EventEncoder, sources ...events.Source) error {
	for _, src := range sources {
		if src == nil {
			continue
		}
		if err := outbox.RecordDomainEvents(ctx, unit.Outbox(), encoder, src.PullEvents()); err != nil {
			return err
		}
	}
	return nil
}

// Clock returns the current time; nil means the wall clock.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
