// Package supervisor wires the three worker processes together: it
// constructs every peripheral and mailbox, injects them into Indicator,
// Network, and Primary, and runs all three Run loops under one
// cancellation context, mirroring the teacher's process-group bring-up in
// cmd/ublk-mem generalized from one device loop to three cooperating ones.
package supervisor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/siantika/dispenserd/internal/backendclient"
	"github.com/siantika/dispenserd/internal/config"
	"github.com/siantika/dispenserd/internal/gpio"
	"github.com/siantika/dispenserd/internal/indicator"
	"github.com/siantika/dispenserd/internal/logging"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/network"
	"github.com/siantika/dispenserd/internal/primary"
	"github.com/siantika/dispenserd/internal/printer"
	"github.com/siantika/dispenserd/internal/queue"
	"github.com/siantika/dispenserd/internal/sequence"
	"github.com/siantika/dispenserd/internal/sound"
)

// Supervisor owns the mailboxes and the three workers for the lifetime of
// the process.
type Supervisor struct {
	log logging.Logger

	primary   *primary.Worker
	network   *network.Worker
	indicator *indicator.Worker

	closers []func() error
}

// Build constructs every peripheral from cfg and wires the three workers
// together. The caller owns the returned Supervisor's lifetime via Run.
func Build(cfg config.Config, log logging.Logger) (*Supervisor, error) {
	if log == nil {
		log = logging.Noop()
	}

	primaryInbox := queue.NewMailbox[message.Message](cfg.Network.MailboxCapacity)
	networkInbox := queue.NewMailbox[message.Message](cfg.Network.MailboxCapacity)
	indicatorInbox := queue.NewMailbox[message.Message](cfg.Network.MailboxCapacity)

	loopSensor, err := gpio.NewSysfsInput(cfg.GPIO.LoopSensorPin, false)
	if err != nil {
		return nil, fmt.Errorf("supervisor: loop sensor: %w", err)
	}
	var buttons [4]gpio.DigitalInput
	for i, pin := range cfg.GPIO.ButtonPins {
		in, err := gpio.NewSysfsInput(pin, false)
		if err != nil {
			return nil, fmt.Errorf("supervisor: button %d: %w", i, err)
		}
		buttons[i] = in
	}
	gate, err := gpio.NewSysfsOutput(cfg.GPIO.GatePin)
	if err != nil {
		return nil, fmt.Errorf("supervisor: gate output: %w", err)
	}
	led, err := gpio.NewSysfsOutput(cfg.GPIO.IndicatorPin)
	if err != nil {
		return nil, fmt.Errorf("supervisor: indicator output: %w", err)
	}

	tp, err := printer.Open(cfg.Printer.DevicePath, cfg.Printer.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("supervisor: printer: %w", err)
	}

	player := sound.NewExecPlayer(cfg.Sound.Player, logging.ForWorker(log, "sound"))
	if err := player.LoadMany(clipSet(cfg.Sound.AssetDir)); err != nil {
		return nil, fmt.Errorf("supervisor: loading clips: %w", err)
	}

	client := backendclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	bootCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	initial, err := client.GetInitialData(bootCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("supervisor: fetching boot-time initial data: %w", err)
	}

	seqStore, err := sequence.Open(cfg.Sequence.FilePath, initial.LastTicketSequence)
	if err != nil {
		return nil, fmt.Errorf("supervisor: opening sequence store: %w", err)
	}

	netWorker := network.New(networkInbox, primaryInbox, indicatorInbox, client, network.Config{
		PendingQueueCapacity: cfg.Network.PendingQueueCapacity,
		HealthCheckInterval:  cfg.Network.HealthCheckInterval,
		PollTimeout:          cfg.Network.QueueInfoTimeout,
	}, logging.ForWorker(log, "network"))

	indWorker := indicator.New(indicatorInbox, led, logging.ForWorker(log, "indicator"))

	primCfg := primary.DefaultConfig()
	primCfg.QueueInfoTimeout = cfg.Network.QueueInfoTimeout
	primWorker := primary.New(primaryInbox, networkInbox, indicatorInbox,
		loopSensor, buttons, gate, tp, player, seqStore,
		initial.Services, primCfg, logging.ForWorker(log, "primary"))

	return &Supervisor{
		log:       log,
		primary:   primWorker,
		network:   netWorker,
		indicator: indWorker,
		closers:   []func() error{tp.Close},
	}, nil
}

// Run starts all three workers and blocks until ctx is cancelled, then
// waits for each worker to return and closes every peripheral.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.primary.Run(ctx) }()
	go func() { defer wg.Done(); s.network.Run(ctx) }()
	go func() { defer wg.Done(); s.indicator.Run(ctx) }()
	wg.Wait()

	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.log.Warnf("supervisor: shutdown cleanup error: %v", err)
		}
	}
}

// clipSet builds the clip-name -> file-path map the greeting script and
// acknowledgement clips draw from: named prompts, spoken digits 0-99 for
// queue counts and estimate minutes, and per-service acknowledgements.
func clipSet(assetDir string) map[string]string {
	clips := map[string]string{}
	named := []string{
		"welcome", "new_welcome", "system_ready", "taking_ticket",
		"pilih_jenis_cuci", "saat_ini", "kendaraan_dalam_antr",
		"estimasi_waktu", "hingga", "menit", "printer_error",
	}
	for _, name := range named {
		clips[name] = filepath.Join(assetDir, name+".wav")
	}
	for n := 0; n <= 99; n++ {
		name := fmt.Sprintf("%d", n)
		clips[name] = filepath.Join(assetDir, name+".wav")
	}
	for i := 1; i <= 4; i++ {
		name := fmt.Sprintf("service_%d", i)
		clips[name] = filepath.Join(assetDir, name+".wav")
	}
	return clips
}
