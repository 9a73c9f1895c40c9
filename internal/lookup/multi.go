package lookup

import (
	"context"
	"errors"
	"log/slog"

	"longbox/internal/logging"
	"longbox/internal/reconcile"
)

// Ordered consults a list of gateways in configuration order and
// returns the first single match. A gateway that is unavailable is
// skipped so one slow or broken service never blocks the others.
type Ordered struct {
	gateways []Gateway
	logger   *slog.Logger
}

// NewOrdered builds an ordered gateway chain.
func NewOrdered(logger *slog.Logger, gateways ...Gateway) *Ordered {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ordered{
		gateways: gateways,
		logger:   logger.With(logging.String(logging.FieldComponent, "lookup")),
	}
}

func (o *Ordered) Name() string { return "ordered" }

func (o *Ordered) Search(ctx context.Context, id Identity) (*reconcile.Record, error) {
	for _, gw := range o.gateways {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := gw.Search(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				o.logger.Warn("lookup service unavailable",
					logging.String("service", gw.Name()),
					logging.Error(err))
				continue
			}
			return nil, err
		}
		if rec != nil {
			o.logger.Debug("lookup match",
				logging.String("service", gw.Name()),
				logging.String("series", rec.Series.Name),
				logging.String("number", rec.Issue.Number))
			return rec, nil
		}
	}
	return nil, nil
}

// Resolve runs a lookup only when the record is still missing its
// minimal identity, merging any match at lowest precedence. The
// returned error is ErrIncompleteIdentity from the record when even the
// lookup could not complete it.
func Resolve(ctx context.Context, gw Gateway, rec *reconcile.Record) error {
	if rec.Validate() == nil {
		return nil
	}
	if gw != nil {
		match, err := gw.Search(ctx, Identity{
			Publisher: rec.Publisher.Name,
			Series:    rec.Series.Name,
			Number:    rec.Issue.Number,
			Title:     rec.Issue.Title,
		})
		switch {
		case errors.Is(err, ErrUnavailable):
			// Same as no match.
		case err != nil:
			return err
		case match != nil:
			rec.Merge(*match)
		}
	}
	return rec.Validate()
}
