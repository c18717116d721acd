package services

// Actions published to live subscribers.
const (
	EventInvoiceCreated = "invoice.created"
	EventInvoiceUpdated = "invoice.updated"
)

// EventPublisher fans domain events out to live subscribers.
type EventPublisher interface {
	Publish(action string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}
