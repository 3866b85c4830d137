package primary

import "github.com/siantika/dispenserd/internal/domain"

// estimateConfig holds the two constants the AUTO-mode estimate spreads
// around the computed midpoint.
type estimateConfig struct {
	EstMinConst int
	EstMaxConst int
}

// estimate is the pure, deterministic computation from §4.1. mode OFF
// returns ok=false (the announcement is suppressed); mode AUTO with a
// nil TimePerVehicle fails with InvalidConfig.
func estimate(info domain.VehicleQueueInfo, cfg estimateConfig) (min, max int, ok bool, err error) {
	switch info.Mode {
	case domain.QueueModeOff:
		return 0, 0, false, nil
	case domain.QueueModeManual:
		return info.EstMin, info.EstMax, true, nil
	case domain.QueueModeAuto:
		if info.TimePerVehicle == nil {
			return 0, 0, false, domain.New("primary.estimate", domain.ErrCodeInvalidConfig,
				"AUTO mode requires time_per_vehicle")
		}
		perVehicleMinutes := int(info.TimePerVehicle.Minutes())
		computed := info.CountAhead * perVehicleMinutes
		lo := computed - cfg.EstMinConst
		hi := computed + cfg.EstMaxConst
		if lo < 1 || hi < 1 {
			lo, hi = 0, 0
		}
		return lo, hi, true, nil
	default:
		return 0, 0, false, domain.New("primary.estimate", domain.ErrCodeInvalidConfig,
			"unknown queue mode: "+string(info.Mode))
	}
}
