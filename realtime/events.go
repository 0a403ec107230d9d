package realtime

// Event names pushed to connected displays. Every push is a hint to re-pull
// authoritative state, never the state itself.
const (
	EventNewOrder            = "new_order"
	EventOrderStatusChanged  = "order_status_changed"
	EventTableSessionChanged = "table_session_changed"
	EventDayOpened           = "day_opened"
	EventDayClosed           = "day_closed"
	EventMenuChanged         = "menu_changed"
	EventStatusSnapshot      = "status_snapshot"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Broadcaster is the abstract publish side of the realtime channel.
// Delivery is best-effort; publishers must never treat a publish failure as
// a request failure.
type Broadcaster interface {
	Publish(tenantID uint, event string, payload interface{})
}

// NopBroadcaster drops everything. Used in tests and when push is disabled;
// the system must stay correct on polling alone.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(tenantID uint, event string, payload interface{}) {}
