package worker

import (
    "context"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/BuildTradeHQ/buildtrade_api/internal/service"
)

// AlertWorker periodically sweeps material stock levels and opens low-stock
// alerts that slipped past the inline re-evaluation (e.g. after a manual
// database fix or a missed write).
type AlertWorker struct {
    inventory *service.InventoryService
    interval  time.Duration
}

// NewAlertWorker constructs an AlertWorker.
func NewAlertWorker(inventory *service.InventoryService, interval time.Duration) *AlertWorker {
    return &AlertWorker{
        inventory: inventory,
        interval:  interval,
    }
}

// Start begins the periodic sweep loop until context is canceled.
func (w *AlertWorker) Start(ctx context.Context) {
    log.Info().Dur("interval", w.interval).Msg("Starting alert sweep worker")

    ticker := time.NewTicker(w.interval)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            if err := w.inventory.SweepAlerts(ctx); err != nil {
                log.Error().Err(err).Msg("Alert sweep failed")
            }
        case <-ctx.Done():
            log.Info().Msg("Alert sweep worker stopped")
            return
        }
    }
}
