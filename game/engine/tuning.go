package engine

// Busy state durations (ms)
const (
	SneezeDurationMS    int64 = 350
	KickDurationMS      int64 = 350
	DyingDurationMS     int64 = 1200
	CelebrateDurationMS int64 = 1500
)

// BreakDurationMS is how long a kicked freeze-block animates before removal.
const BreakDurationMS int64 = 500

// Adversary cadence
const (
	TrollIntervalMS          int64 = 600
	PotIntervalMS            int64 = 500
	NarwhalIntervalMS        int64 = 650
	NarwhalChargeIntervalMS  int64 = 120
	AdversaryBreakIntervalMS int64 = 1500

	ChaseNearRadius         = 10
	ChasePrimaryAxisPercent = 70
	StuckThreshold          = 2
)

// Collectible ability timings
const (
	SpawnDurationMS    int64 = 400
	TeleportIntervalMS int64 = 4000
	TeleportDurationMS int64 = 300
	CactusSafeMS       int64 = 3000
	CactusSpikyMS      int64 = 2000
)

// Autopilot heuristics. The loop detector window and threshold are tuning
// values, not correctness contracts.
const (
	AutopilotMoveIntervalMS   int64 = 250
	AutopilotActionIntervalMS int64 = 700

	LoopHistorySize = 8
	LoopEarlyWindow = 5
	LoopThreshold   = 3
	MaxNoopMoves    = 4

	DangerRadiusBase    = 2
	AutoChasePercent    = 60
	AutoChaseDifficulty = 3
	SneezeDifficulty    = 2
	SneezeThreatMin     = 3
	SneezeThreatMax     = 6
)
