package primary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/domain"
)

func TestEstimateOffSuppressesResult(t *testing.T) {
	_, _, ok, err := estimate(domain.VehicleQueueInfo{Mode: domain.QueueModeOff}, estimateConfig{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEstimateManualPassesThrough(t *testing.T) {
	min, max, ok, err := estimate(domain.VehicleQueueInfo{Mode: domain.QueueModeManual, EstMin: 4, EstMax: 9}, estimateConfig{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, min)
	assert.Equal(t, 9, max)
}

func TestEstimateAutoComputesSpreadAroundMidpoint(t *testing.T) {
	// S5: queue=3, time_per_vehicle=5, est_min_const=1, est_max_const=2 -> 14..17.
	tpv := 5 * time.Minute
	info := domain.VehicleQueueInfo{Mode: domain.QueueModeAuto, CountAhead: 3, TimePerVehicle: &tpv}
	min, max, ok, err := estimate(info, estimateConfig{EstMinConst: 1, EstMaxConst: 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 14, min)
	assert.Equal(t, 17, max)
}

func TestEstimateAutoClampsNegativeToZero(t *testing.T) {
	tpv := time.Minute
	info := domain.VehicleQueueInfo{Mode: domain.QueueModeAuto, CountAhead: 0, TimePerVehicle: &tpv}
	min, max, ok, err := estimate(info, estimateConfig{EstMinConst: 5, EstMaxConst: 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, min)
	assert.Equal(t, 0, max)
}

func TestEstimateAutoJointlyClampsAsymmetricConstants(t *testing.T) {
	// Regression: est_min_const=1, est_max_const=2 around computed=0 gives
	// lo=-1, hi=2. Clamping each bound independently would leave hi=2
	// while lo drops to 0; §4.1 requires both go to 0 together whenever
	// either bound is < 1.
	tpv := time.Minute
	info := domain.VehicleQueueInfo{Mode: domain.QueueModeAuto, CountAhead: 0, TimePerVehicle: &tpv}
	min, max, ok, err := estimate(info, estimateConfig{EstMinConst: 1, EstMaxConst: 2})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, min)
	assert.Equal(t, 0, max)
}

func TestEstimateAutoMissingTimePerVehicleFailsInvalidConfig(t *testing.T) {
	info := domain.VehicleQueueInfo{Mode: domain.QueueModeAuto, CountAhead: 3}
	_, _, _, err := estimate(info, estimateConfig{EstMinConst: 1, EstMaxConst: 2})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidConfig))
}
