// Package viz renders lift estimates for the terminal.
//
//   - [RenderResult]: the six derived quantities of a single run
//   - [RenderSummary]: per-quantity Monte Carlo statistics
//   - [RenderHistogram], [Scatter]: distribution and sensitivity plots
//   - [LiveModel]: Bubble Tea view that streams trials with running statistics
//
// # Key Bindings (live view)
//
//	Space - Pause/Resume trials
//	R     - Reset statistics
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
