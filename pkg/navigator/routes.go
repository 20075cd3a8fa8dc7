// Package navigator keeps the current route and the form step in agreement.
//
// The step number is the single source of truth; route segments and step
// labels are derived from it through the fixed tables below.
package navigator

import (
	"slices"
	"strings"
)

// Routes lists the path segment of each step, in step order.
var Routes = []string{"basic-info", "driver-selection", "summary"}

// Labels lists the step-indicator label of each step, in step order.
var Labels = []string{"Basic Info", "Driver Selection", "Summary"}

// StepCount is the number of wizard steps.
const StepCount = 3

// StepFromPath derives the step from the last path segment.
// The root path and unknown segments map to step 1.
func StepFromPath(path string) int {
	path = strings.TrimSuffix(path, "/")
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	if idx := slices.Index(Routes, segment); idx >= 0 {
		return idx + 1
	}
	return 1
}

// RouteForStep returns the route segment for step, if step is in range.
func RouteForStep(step int) (string, bool) {
	if step < 1 || step > len(Routes) {
		return "", false
	}
	return Routes[step-1], true
}

// PathForStep returns "/<route>" for step. Out-of-range steps get the first route.
func PathForStep(step int) string {
	route, ok := RouteForStep(step)
	if !ok {
		route = Routes[0]
	}
	return "/" + route
}

// StepForLabel maps a step-indicator label to its step number.
func StepForLabel(label string) (int, bool) {
	idx := slices.Index(Labels, label)
	if idx < 0 {
		return 0, false
	}
	return idx + 1, true
}

// LabelForStep returns the indicator label for step, or "".
func LabelForStep(step int) string {
	if step < 1 || step > len(Labels) {
		return ""
	}
	return Labels[step-1]
}
