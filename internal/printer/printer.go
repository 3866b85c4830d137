// Package printer implements the TicketPrinter peripheral capability (§6):
// an ESC/POS driver over a serial tty, grounded directly on
// Daedaluz-goserial for the transport and on boombuler/barcode/ean for
// rendering the printed barcode image. Reconnection follows a single
// cenkalti/backoff retry before surfacing PrinterUnavailable, per §6's
// "transparently reconnect up to one retry" contract.
package printer

import (
	"bytes"
	"image"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"
	"github.com/cenkalti/backoff/v4"
	serial "github.com/daedaluz/goserial"

	"github.com/siantika/dispenserd/internal/domain"
)

// Align is the text-justification knob of Set.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// BarcodePosition controls where the human-readable code is printed
// relative to the barcode bars.
type BarcodePosition int

const (
	BarcodePositionNone BarcodePosition = iota
	BarcodePositionAbove
	BarcodePositionBelow
)

// TicketPrinter is the thermal-receipt printer capability Primary drives
// during PRINTING_TICKET.
type TicketPrinter interface {
	Set(font string, bold bool, width, height int, align Align) error
	Text(s string) error
	Barcode(code string, height, width int, position BarcodePosition) error
	Cut() error
	Close() error
}

// ESCPOS is the default TicketPrinter, framing ESC/POS commands onto a
// serial tty opened via Daedaluz-goserial.
type ESCPOS struct {
	devicePath string
	baudRate   uint32
	port       *serial.Port
}

// Open configures and opens the serial tty at devicePath, raw-mode, at
// baudRate, ready to accept ESC/POS frames.
func Open(devicePath string, baudRate int) (*ESCPOS, error) {
	p := &ESCPOS{devicePath: devicePath, baudRate: uint32(baudRate)}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ESCPOS) connect() error {
	port, err := serial.Open(p.devicePath, serial.NewOptions().SetReadTimeout(2*time.Second))
	if err != nil {
		return domain.Wrap("printer.connect", domain.ErrCodePrinterUnavailable, err)
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return domain.Wrap("printer.connect", domain.ErrCodePrinterUnavailable, err)
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return domain.Wrap("printer.connect", domain.ErrCodePrinterUnavailable, err)
	}
	attrs.MakeRaw()
	attrs.SetCustomSpeed(p.baudRate)
	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return domain.Wrap("printer.connect", domain.ErrCodePrinterUnavailable, err)
	}
	p.port = port
	return nil
}

// write sends data to the port, reconnecting exactly once on failure
// before surfacing PrinterUnavailable, per the §6 reconnect contract.
func (p *ESCPOS) write(data []byte) error {
	op := func() error {
		if p.port == nil {
			return p.connect()
		}
		_, err := p.port.Write(data)
		if err != nil {
			p.port.Close()
			p.port = nil
			return err
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(50*time.Millisecond), 1)
	if err := backoff.Retry(op, bo); err != nil {
		return domain.Wrap("printer.write", domain.ErrCodePrinterUnavailable, err)
	}
	return nil
}

// Set selects font, weight, character scale, and alignment for subsequent
// Text calls, framed as ESC/POS GS/ESC sequences.
func (p *ESCPOS) Set(font string, bold bool, width, height int, align Align) error {
	var buf bytes.Buffer
	buf.WriteString("\x1B@") // ESC @ : initialize

	boldFlag := byte(0)
	if bold {
		boldFlag = 1
	}
	buf.Write([]byte{0x1B, 'E', boldFlag}) // ESC E n : emphasis

	scale := byte((clamp(width, 1, 8)-1)<<4 | (clamp(height, 1, 8) - 1))
	buf.Write([]byte{0x1D, '!', scale}) // GS ! n : character size

	buf.Write([]byte{0x1B, 'a', byte(align)}) // ESC a n : justification

	return p.write(buf.Bytes())
}

// Text prints s followed by a line feed.
func (p *ESCPOS) Text(s string) error {
	return p.write(append([]byte(s), '\n'))
}

// Barcode renders code's EAN-13 barcode as a bitmap (via
// boombuler/barcode/ean) and sends it as an ESC/POS raster image,
// optionally with the human-readable code printed above/below the bars.
func (p *ESCPOS) Barcode(code string, height, width int, position BarcodePosition) error {
	bc, err := ean.Encode(code)
	if err != nil {
		return domain.Wrap("printer.Barcode", domain.ErrCodeInvalidConfig, err)
	}
	scaled, err := barcode.Scale(bc, clamp(width, 1, 4)*bc.Bounds().Dx(), clamp(height, 8, 256))
	if err != nil {
		return domain.Wrap("printer.Barcode", domain.ErrCodeInvalidConfig, err)
	}

	if position == BarcodePositionAbove {
		if err := p.Text(code); err != nil {
			return err
		}
	}
	if err := p.write(rasterize(scaled)); err != nil {
		return err
	}
	if position == BarcodePositionBelow {
		return p.Text(code)
	}
	return nil
}

// Cut feeds and fires the partial-cut mechanism.
func (p *ESCPOS) Cut() error {
	return p.write([]byte{0x1D, 'V', 1}) // GS V 1 : partial cut
}

// Close releases the underlying serial port.
func (p *ESCPOS) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rasterize packs a 1-bit image into an ESC/POS GS v 0 raster command.
func rasterize(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rowBytes := (w + 7) / 8

	var buf bytes.Buffer
	buf.Write([]byte{0x1D, 'v', '0', 0})
	buf.WriteByte(byte(rowBytes))
	buf.WriteByte(byte(rowBytes >> 8))
	buf.WriteByte(byte(h))
	buf.WriteByte(byte(h >> 8))

	row := make([]byte, rowBytes)
	for y := 0; y < h; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < w; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r < 0x8000 { // dark pixel sets the bit
				row[x/8] |= 1 << uint(7-x%8)
			}
		}
		buf.Write(row)
	}
	return buf.Bytes()
}

var _ TicketPrinter = (*ESCPOS)(nil)
