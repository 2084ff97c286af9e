// Package smoothing reduces network-jitter stair-stepping in a demo's
// recorded view angles (§2, Non-goals: the optimizer internals of the
// original sparse least-squares desync solve are out of scope; this is the
// thin wrapper the spec allows, a windowed weighted average over each
// fixangle-bounded segment rather than a deltax reallocation, grounded on
// pydem/smoothing.py's segmenting and on the corpus having no sparse-solver
// dependency to wrap).
package smoothing

import "github.com/qdemtools/qdem/demo"

// window is how many neighboring samples on each side contribute to a
// smoothed value, weighted by inverse time distance.
const window = 4

func smoothSegment(time, values []float32) []float32 {
	n := len(values)
	out := make([]float32, n)
	copy(out, values)
	if n < 5 {
		return out
	}
	for i := 0; i < n; i++ {
		var weightSum, valueSum float32
		lo, hi := i-window, i+window
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		for j := lo; j <= hi; j++ {
			dt := time[j] - time[i]
			if dt < 0 {
				dt = -dt
			}
			weight := 1.0 / (1.0 + dt*dt*64)
			weightSum += weight
			valueSum += weight * values[j]
		}
		out[i] = valueSum / weightSum
	}
	return out
}

// SmoothViewAngles smooths each demo's yaw and pitch series independently
// within every stretch bounded by a pair of consecutive SetAngle snaps (a
// teleport or spawn invalidates any continuity assumption across it), then
// writes the smoothed values back, leaving roll untouched (the original
// never models camera roll, which Quake does not use in play).
func SmoothViewAngles(d *demo.Demo) {
	time := d.GetTime()
	yaw := d.GetYaw()
	pitch := d.GetPitch()
	fixangle := d.GetFixangleIndices()

	bounds := append([]int{-1}, fixangle...)
	bounds = append(bounds, len(time)-1)

	for s := 0; s < len(bounds)-1; s++ {
		begin := bounds[s] + 1
		end := bounds[s+1] + 1
		if end-begin < 5 {
			continue
		}
		smoothedYaw := smoothSegment(time[begin:end], yaw[begin:end])
		smoothedPitch := smoothSegment(time[begin:end], pitch[begin:end])
		copy(yaw[begin:end], smoothedYaw)
		copy(pitch[begin:end], smoothedPitch)
	}

	d.SetYaw(yaw)
	d.SetPitch(pitch)
}
