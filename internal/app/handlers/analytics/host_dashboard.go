package analytics

import (
	"context"
	"log/slog"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainanalytics "addisstay/internal/domain/analytics"
	domainlistings "addisstay/internal/domain/listings"
	domainuser "addisstay/internal/domain/user"
)

const hostDashboardKey = "host.analytics"

type HostDashboardQuery struct {
	HostID   string `validate:"required"`
	Period   string
	Currency string
}

func (HostDashboardQuery) Key() string { return hostDashboardKey }

type HostDashboardHandler struct {
	UoWFactory uow.UoWFactory
	Views      policies.ViewCounter
	Clock      support.Clock
	Logger     *slog.Logger
}

func (h *HostDashboardHandler) Handle(ctx context.Context, q HostDashboardQuery) (dto.Dashboard, error) {
	period, err := domainanalytics.ParsePeriod(q.Period)
	if err != nil {
		return dto.Dashboard{}, err
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Dashboard{}, err
	}
	defer support.Release(cleanup)

	host := domainlistings.HostID(q.HostID)
	owned, err := unit.Listings().Search(ctx, domainlistings.SearchParams{Host: host, IncludeHidden: true, Limit: 60})
	if err != nil {
		return dto.Dashboard{}, err
	}
	bookings, err := unit.Bookings().ListByHost(ctx, host)
	if err != nil {
		return dto.Dashboard{}, err
	}
	reviews, err := unit.Reviews().ListByHost(ctx, host)
	if err != nil {
		return dto.Dashboard{}, err
	}
	var views int64
	if h.Views != nil && len(owned.Items) > 0 {
		ids := make([]domainlistings.ListingID, len(owned.Items))
		for i, l := range owned.Items {
			ids[i] = l.ID
		}
		if views, err = h.Views.Total(ctx, ids); err != nil {
			if h.Logger != nil {
				h.Logger.Warn("listing views unavailable", "host_id", q.HostID, "error", err)
			}
			views = 0
		}
	}
	preferred := ""
	if u, err := unit.Users().ByID(ctx, domainuser.ID(q.HostID)); err == nil {
		preferred = u.Preferences.Currency
	}
	d := domainanalytics.Compute(domainanalytics.Input{
		Period:   period,
		Now:      h.Clock.Now(),
		Listings: owned.Items,
		Bookings: bookings,
		Reviews:  reviews,
		Views:    views,
	})
	return dto.MapDashboard(d, dto.DisplayCurrency(q.Currency, preferred)), nil
}

var _ queries.Handler[HostDashboardQuery, dto.Dashboard] = (*HostDashboardHandler)(nil)
