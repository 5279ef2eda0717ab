// Package analysis extracts gait descriptors from recorded runs.
//
//   - [PowerSpectrum]: one-sided power spectrum of a uniformly sampled signal
//   - [DominantFrequency]: strongest non-zero frequency of a signal
//   - [AnalyzeGait]: speed and stride frequency of a body's center trajectory
//
// A walking starfish bobs its center up and down once per stride, so the
// dominant frequency of the center height is its stride frequency:
//
//	gait, err := analysis.AnalyzeGait(result)
//	fmt.Printf("%.2f Hz at %.1f units/s\n", gait.Frequency, gait.Speed)
package analysis
