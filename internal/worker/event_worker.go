package worker

import (
	"github.com/solterra/operations-service/internal/events"
	"github.com/solterra/operations-service/internal/service"
)

// RegisterEventHandlers wires the synchronous event subscribers: the
// notification fan-out and the sales-cut aggregation side effects.
func RegisterEventHandlers(dispatcher events.Dispatcher, notifications *service.NotificationService, cuts *service.SalesCutService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if cuts != nil && dispatcher != nil {
		dispatcher.Subscribe(events.EventContractCreated, cuts.HandleContractCreated)
		dispatcher.Subscribe(events.EventPaymentRecorded, cuts.HandlePaymentRecorded)
	}
}
