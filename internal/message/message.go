// Package message defines the single payload type carried over every queue
// in the device: Message, its topic/kind tags, and the sealed MessagePayload
// sum type that replaces the source's heterogeneous dict payloads.
package message

import (
	"time"

	"github.com/google/uuid"

	"github.com/siantika/dispenserd/internal/domain"
)

// Topic identifies the intended receiver. A worker discards any message
// whose Topic does not match its own role.
type Topic string

const (
	TopicNetwork   Topic = "NETWORK"
	TopicPrimary   Topic = "PRIMARY"
	TopicIndicator Topic = "INDICATOR"
)

// Kind distinguishes a one-way command, a one-way notification, and a
// reply to an earlier command.
type Kind string

const (
	KindCommand  Kind = "COMMAND"
	KindEvent    Kind = "EVENT"
	KindResponse Kind = "RESPONSE"
)

// Message is the sole queue payload.
type Message struct {
	ID            string
	Topic         Topic
	Kind          Kind
	Payload       Payload
	CorrelationID string
	CreatedAt     time.Time
}

// New stamps a fresh id and timestamp onto a message bound for topic.
func New(topic Topic, kind Kind, payload Payload) Message {
	return Message{
		ID:        uuid.NewString(),
		Topic:     topic,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Reply builds a RESPONSE message addressed back to PRIMARY, correlated to
// the command it answers.
func Reply(to Message, payload Payload) Message {
	m := New(TopicPrimary, KindResponse, payload)
	m.CorrelationID = to.ID
	return m
}

// Payload is the sealed interface implemented by every MessagePayload
// variant. The unexported method prevents payloads from being defined
// outside this package, keeping the sum type closed.
type Payload interface {
	isPayload()
}

// GetInitialDataRequest asks Network to fetch the last ticket number and
// service-type list.
type GetInitialDataRequest struct{}

func (GetInitialDataRequest) isPayload() {}

// InitialDataPayload bundles the response to GetInitialDataRequest. A
// health check that observes a changed snapshot sends
// ListOfServicesUpdatePayload instead.
type InitialDataPayload struct {
	Data domain.InitialData
}

func (InitialDataPayload) isPayload() {}

// GetQueueVehicleInfoRequest asks Network for the current queue shape, used
// to script the greeting.
type GetQueueVehicleInfoRequest struct{}

func (GetQueueVehicleInfoRequest) isPayload() {}

// QueueVehicleInfoPayload answers GetQueueVehicleInfoRequest.
type QueueVehicleInfoPayload struct {
	Info domain.VehicleQueueInfo
}

func (QueueVehicleInfoPayload) isPayload() {}

// RegisterTicketPayload asks Network to register a freshly printed ticket
// with the backend. Network re-enqueues this exact payload onto its
// pending queue on transport failure.
type RegisterTicketPayload struct {
	Ticket domain.Ticket
}

func (RegisterTicketPayload) isPayload() {}

// TicketRegisteredPayload confirms a ticket was (eventually) accepted by
// the backend, carrying the ticket exactly as Network sent it. The
// backend-assigned id is not filled in: RegisterTicket returns only an
// error.
type TicketRegisteredPayload struct {
	Ticket domain.Ticket
}

func (TicketRegisteredPayload) isPayload() {}

// DeviceStatusPayload is the last-writer-wins status tag the Network
// worker and Primary both emit to the Indicator.
type DeviceStatusPayload struct {
	Status domain.DeviceStatus
}

func (DeviceStatusPayload) isPayload() {}

// ListOfServicesUpdatePayload hot-swaps Primary's service-type list after a
// health check observes a changed snapshot.
type ListOfServicesUpdatePayload struct {
	Services []domain.ServiceType
}

func (ListOfServicesUpdatePayload) isPayload() {}
