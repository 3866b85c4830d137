package domain

import "time"

// DeviceStatus is the externally visible health tag the Indicator renders
// as an LED pattern and the Network worker reports after every backend call.
type DeviceStatus string

const (
	StatusFine          DeviceStatus = "FINE"
	StatusNetError       DeviceStatus = "NET_ERROR"
	StatusPrinterError   DeviceStatus = "PRINTER_ERROR"
	StatusShutdown       DeviceStatus = "SHUTDOWN"
)

// QueueMode controls how VehicleQueueInfo's estimate fields are interpreted.
type QueueMode string

const (
	QueueModeAuto   QueueMode = "AUTO"
	QueueModeManual QueueMode = "MANUAL"
	QueueModeOff    QueueMode = "OFF"
)

// ServiceType is a wash service offered by the device. Immutable once
// received from the backend; PriceCents keeps the price as integer cents
// rather than reaching for a decimal library, since the behavioral spec
// never performs arithmetic on price beyond display (see DESIGN.md).
type ServiceType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// Ticket is the per-vehicle record carried between Primary, the printer,
// and the backend.
type Ticket struct {
	BackendID    string    `json:"backend_id,omitempty"` // empty until the backend assigns one
	ServiceType  int       `json:"service_type"`
	TicketNumber string    `json:"ticket_number"` // 13 ASCII digits, valid EAN-13
	EntryTime    time.Time `json:"entry_time"`
}

// VehicleQueueInfo shapes the greeting audio.
type VehicleQueueInfo struct {
	CountAhead     int            `json:"count_ahead"`
	Mode           QueueMode      `json:"mode"`
	EstMin         int            `json:"est_min"`
	EstMax         int            `json:"est_max"`
	TimePerVehicle *time.Duration `json:"time_per_vehicle,omitempty"` // required when Mode == QueueModeAuto
}

// InitialData is the bundle the Network worker fetches once at boot.
type InitialData struct {
	LastTicketSequence uint64        `json:"last_ticket_sequence"`
	Services           []ServiceType `json:"services"`
}
