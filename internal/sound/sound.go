// Package sound implements the AudioPlayer peripheral capability (§6):
// pre-loaded greeting/prompt clips played by shelling out to a system
// player binary via os/exec.
package sound

import (
	"os/exec"
	"strings"
	"sync"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/logging"
)

// requiredClips is the minimum clip-name set §6/SPEC_FULL §4.1 relies on:
// every name the FSM's scripted sequences and acknowledgements reference
// directly (the spoken digits 0..n are asset-directory-specific and not
// checked here).
var requiredClips = []string{
	"welcome", "new_welcome", "system_ready", "taking_ticket", "printer_error",
	"service_1", "service_2", "service_3", "service_4",
	"saat_ini", "kendaraan_dalam_antr", "estimasi_waktu", "hingga", "menit",
	"pilih_jenis_cuci",
}

// AudioPlayer plays named clips, non-blocking, with at most one clip
// audible at a time (§4.1's greeting is interruptible by a button press).
type AudioPlayer interface {
	LoadMany(clips map[string]string) error
	Play(name string) error
	Stop()
	IsBusy() bool
}

// ExecPlayer shells out to an external player binary (aplay by default)
// for each Play call, tracking the spawned process so Stop can kill it.
type ExecPlayer struct {
	mu     sync.Mutex
	player string
	clips  map[string]string
	cmd    *exec.Cmd
	log    logging.Logger
}

// NewExecPlayer constructs a player that invokes playerBin (e.g. "aplay")
// for every clip.
func NewExecPlayer(playerBin string, log logging.Logger) *ExecPlayer {
	if log == nil {
		log = logging.Noop()
	}
	return &ExecPlayer{player: playerBin, clips: map[string]string{}, log: log}
}

// LoadMany registers name -> file path mappings for later Play calls, then
// validates that the merged set still covers every name requiredClips
// lists. Asset directories are operator-configured, so a missing clip is
// a deployment error the supervisor should refuse to start on, not a
// silent Play-time failure discovered the first time the FSM needs it.
func (p *ExecPlayer) LoadMany(clips map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, path := range clips {
		p.clips[name] = path
	}

	var missing []string
	for _, name := range requiredClips {
		if _, ok := p.clips[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.New("sound.LoadMany", domain.ErrCodeInvalidConfig,
			"missing required clips: "+strings.Join(missing, ", "))
	}
	return nil
}

// Play stops whatever clip is currently audible and starts name,
// returning once the process has been spawned (not once playback ends).
func (p *ExecPlayer) Play(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, ok := p.clips[name]
	if !ok {
		return domain.New("sound.Play", domain.ErrCodeInvalidConfig, "unknown clip: "+name)
	}

	p.killLocked()

	cmd := exec.Command(p.player, path)
	if err := cmd.Start(); err != nil {
		return domain.Wrap("sound.Play", domain.ErrCodeInvalidConfig, err)
	}
	p.cmd = cmd

	go func(c *exec.Cmd) {
		if err := c.Wait(); err != nil {
			p.log.Debugf("sound: player exited: %v", err)
		}
		p.mu.Lock()
		if p.cmd == c {
			p.cmd = nil
		}
		p.mu.Unlock()
	}(cmd)

	return nil
}

// Stop interrupts the currently playing clip, if any. Primary calls this
// when a button press preempts the estimate announcement (invariant 2).
func (p *ExecPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killLocked()
}

func (p *ExecPlayer) killLocked() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	_ = p.cmd.Process.Kill()
	p.cmd = nil
}

// IsBusy reports whether a clip is currently playing.
func (p *ExecPlayer) IsBusy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

var _ AudioPlayer = (*ExecPlayer)(nil)
