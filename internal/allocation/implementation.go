// internal/allocation/implementation.go
package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
)

const defaultLockTimeout = 3 * time.Second

// coordinator implements the Coordinator interface.
type coordinator struct {
	apps     application.Store
	calendar calendar.Service
	ledger   inventory.Service
	locks    *lockTable
	clock    clock.Clock
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option configures the coordinator.
type Option func(*coordinator)

// WithLockTimeout overrides the bounded wait for resource locks.
func WithLockTimeout(d time.Duration) Option {
	return func(c *coordinator) {
		if d > 0 {
			c.locks = newLockTable(d)
		}
	}
}

// NewCoordinator creates a new allocation coordinator.
func NewCoordinator(apps application.Store, cal calendar.Service, ledger inventory.Service, clk clock.Clock, logger *zap.Logger, opts ...Option) Coordinator {
	c := &coordinator{
		apps:     apps,
		calendar: cal,
		ledger:   ledger,
		locks:    newLockTable(defaultLockTimeout),
		clock:    clk,
		logger:   logger,
		tracer:   otel.Tracer("venuehub/allocation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resourceKeys names every lock the application's resource set needs. The
// application's own key is part of the set so that two decisions on the same
// application serialize even when their venue/material sets would not collide.
func resourceKeys(a *application.Application) []string {
	keys := make([]string, 0, len(a.Materials)+2)
	keys = append(keys, "application:"+a.ID.String())
	keys = append(keys, "venue:"+a.VenueID.String())
	for _, item := range a.Materials {
		keys = append(keys, "material:"+item.MaterialID.String())
	}
	return keys
}

// Approve commits the venue interval and every material line item, or
// changes nothing. Checks run first under the resource locks; commits only
// start once every check has passed, so the rollback path is exceptional.
func (c *coordinator) Approve(ctx context.Context, p identity.Principal, applicationID uuid.UUID) (*application.Application, error) {
	ctx, span := c.tracer.Start(ctx, "allocation.approve",
		trace.WithAttributes(attribute.String("application.id", applicationID.String())),
	)
	defer span.End()

	if !canReview(p) {
		return nil, ErrNotPermitted
	}

	a, err := c.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanTransition(a.Status, application.StatusApproved) {
		return nil, &application.TransitionError{From: a.Status, To: application.StatusApproved}
	}

	release, err := c.locks.acquire(ctx, resourceKeys(a))
	if err != nil {
		span.SetAttributes(attribute.Bool("lock.contended", true))
		return nil, err
	}
	defer release()

	// Reload under lock. A concurrent decision on the same application may
	// have landed between the first read and lock acquisition.
	a, err = c.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanTransition(a.Status, application.StatusApproved) {
		return nil, &application.TransitionError{From: a.Status, To: application.StatusApproved}
	}

	// Check phase: validate everything before touching any resource.
	conflict, err := c.calendar.CheckConflict(ctx, a.VenueID, a.StartTime, a.EndTime, a.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, fmt.Errorf("application %s: %w", a.ID, calendar.ErrTimeConflict)
	}
	for _, item := range a.Materials {
		ok, err := c.ledger.CheckAvailability(ctx, item.MaterialID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			m, merr := c.ledger.GetMaterial(ctx, item.MaterialID)
			if merr != nil {
				return nil, merr
			}
			return nil, fmt.Errorf("material %s: need %d, available %d: %w",
				m.Name, item.Quantity, m.AvailableQuantity(), inventory.ErrInsufficientStock)
		}
	}

	// Commit phase. Failures here are invariant violations (availability was
	// pre-checked under lock); undo anything already applied before surfacing.
	var undo []func()
	rollback := func(cause error) {
		c.logger.Error("rolling back partial approval",
			zap.String("application_id", a.ID.String()),
			zap.Error(cause),
		)
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	if err := c.calendar.Commit(ctx, a.VenueID, a.ID, a.StartTime, a.EndTime); err != nil {
		return nil, err
	}
	undo = append(undo, func() {
		if rerr := c.calendar.Release(ctx, a.VenueID, a.ID); rerr != nil {
			c.logger.Error("failed to release venue during rollback",
				zap.String("application_id", a.ID.String()), zap.Error(rerr))
		}
	})

	for _, item := range a.Materials {
		item := item
		if err := c.ledger.Reserve(ctx, a.ID, item.MaterialID, item.Quantity); err != nil {
			rollback(err)
			return nil, err
		}
		undo = append(undo, func() {
			if rerr := c.ledger.Release(ctx, a.ID, item.MaterialID); rerr != nil {
				c.logger.Error("failed to release material during rollback",
					zap.String("application_id", a.ID.String()),
					zap.String("material_id", item.MaterialID.String()),
					zap.Error(rerr))
			}
		})
	}

	now := c.clock.Now()
	if err := a.Approve(p.ID, now); err != nil {
		rollback(err)
		return nil, err
	}
	if err := c.apps.SaveApplication(ctx, a); err != nil {
		rollback(err)
		return nil, fmt.Errorf("save application: %w", err)
	}

	span.SetAttributes(attribute.Bool("approve.success", true))
	return a, nil
}

// Reject moves a pending application to rejected. Pending applications hold
// no resources, so there is nothing to release.
func (c *coordinator) Reject(ctx context.Context, p identity.Principal, applicationID uuid.UUID, reason string) (*application.Application, error) {
	if !canReview(p) {
		return nil, ErrNotPermitted
	}
	return c.cancelOrReject(ctx, p, applicationID, application.StatusRejected, reason)
}

// Cancel moves a pending or approved application to cancelled, releasing any
// previously committed venue interval and material quantities.
func (c *coordinator) Cancel(ctx context.Context, p identity.Principal, applicationID uuid.UUID) (*application.Application, error) {
	a, err := c.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !canCancel(p, a) {
		return nil, ErrNotPermitted
	}
	return c.cancelOrReject(ctx, p, applicationID, application.StatusCancelled, "")
}

func (c *coordinator) cancelOrReject(ctx context.Context, p identity.Principal, applicationID uuid.UUID, target application.Status, reason string) (*application.Application, error) {
	ctx, span := c.tracer.Start(ctx, "allocation.cancel_or_reject",
		trace.WithAttributes(
			attribute.String("application.id", applicationID.String()),
			attribute.String("target.status", string(target)),
		),
	)
	defer span.End()

	a, err := c.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanTransition(a.Status, target) {
		return nil, &application.TransitionError{From: a.Status, To: target}
	}

	// The locks serialize this transition against a concurrent approval, so
	// an in-flight commit on this application cannot be overwritten.
	release, err := c.locks.acquire(ctx, resourceKeys(a))
	if err != nil {
		return nil, err
	}
	defer release()

	a, err = c.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanTransition(a.Status, target) {
		return nil, &application.TransitionError{From: a.Status, To: target}
	}

	// Leaving approved releases the committed resources before the status
	// flips. Both releases are idempotent, so a retried compensating call
	// after a crash is safe.
	if a.Status == application.StatusApproved {
		if err := c.calendar.Release(ctx, a.VenueID, a.ID); err != nil {
			return nil, err
		}
		if err := c.ledger.ReleaseAll(ctx, a.ID); err != nil {
			// Ledger bookkeeping fault; never leaks internals to the caller.
			c.logger.Error("material release failed during cancellation",
				zap.String("application_id", a.ID.String()), zap.Error(err))
			return nil, err
		}
	}

	now := c.clock.Now()
	switch target {
	case application.StatusRejected:
		err = a.Reject(p.ID, reason, now)
	case application.StatusCancelled:
		err = a.Cancel(now)
	default:
		return nil, &application.TransitionError{From: a.Status, To: target}
	}
	if err != nil {
		return nil, err
	}
	if err := c.apps.SaveApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return a, nil
}
