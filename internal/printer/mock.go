package printer

import (
	"sync"

	"github.com/siantika/dispenserd/internal/domain"
)

// MockPrinter is a programmable TicketPrinter spy, following the
// teacher's MockBackend call-tracking idiom.
type MockPrinter struct {
	mu sync.Mutex

	FailNextPrint bool
	texts         []string
	barcodes      []string
	cutCalls      int
	closed        bool
}

func NewMockPrinter() *MockPrinter {
	return &MockPrinter{}
}

func (m *MockPrinter) Set(font string, bold bool, width, height int, align Align) error {
	return nil
}

func (m *MockPrinter) Text(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextPrint {
		return unavailable()
	}
	m.texts = append(m.texts, s)
	return nil
}

func (m *MockPrinter) Barcode(code string, height, width int, position BarcodePosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextPrint {
		return unavailable()
	}
	m.barcodes = append(m.barcodes, code)
	return nil
}

func (m *MockPrinter) Cut() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextPrint {
		return unavailable()
	}
	m.cutCalls++
	return nil
}

func (m *MockPrinter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockPrinter) Barcodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.barcodes))
	copy(out, m.barcodes)
	return out
}

func (m *MockPrinter) CutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cutCalls
}

func unavailable() error {
	return domain.New("printer.Mock", domain.ErrCodePrinterUnavailable, "mock printer unavailable")
}

var _ TicketPrinter = (*MockPrinter)(nil)
