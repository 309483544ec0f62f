package core

// DefaultScrollThreshold is the visible fraction of the pane's bottom region
// at or above which the user counts as following the conversation.
const DefaultScrollThreshold = 0.9

// ScrollGovernor decides whether a content update also scrolls the
// conversation pane to the bottom. The pane reports what it sees through
// Observe; updates ask ShouldScroll.
type ScrollGovernor struct {
	threshold        float64
	userScrolledAway bool
}

// NewScrollGovernor creates a governor. Thresholds outside (0, 1] fall back
// to DefaultScrollThreshold.
func NewScrollGovernor(threshold float64) *ScrollGovernor {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultScrollThreshold
	}
	return &ScrollGovernor{threshold: threshold}
}

// Observe records the visible fraction of the pane's bottom region.
func (g *ScrollGovernor) Observe(ratio float64) {
	g.userScrolledAway = ratio < g.threshold
}

// ObserveView records what a pane showing lines [yOffset, yOffset+height)
// of total sees of the bottom region. See BottomRatio.
func (g *ScrollGovernor) ObserveView(yOffset, height, total, margin int) {
	g.Observe(BottomRatio(yOffset, height, total, margin))
}

// UserScrolledAway reports whether auto-scroll is suspended.
func (g *ScrollGovernor) UserScrolledAway() bool {
	return g.userScrolledAway
}

// ShouldScroll reports whether the pane should jump to the bottom. Forced
// scrolls ignore the user's position.
func (g *ScrollGovernor) ShouldScroll(force bool) bool {
	return force || !g.userScrolledAway
}

// BottomRatio computes the visible fraction of the last height lines of
// content for a pane showing lines [yOffset, yOffset+height) of total. Up to
// margin hidden lines below the view are tolerated.
func BottomRatio(yOffset, height, total, margin int) float64 {
	if height <= 0 || total <= height {
		return 1
	}
	hidden := total - (yOffset + height)
	hidden -= max(margin, 0)
	if hidden <= 0 {
		return 1
	}
	if hidden >= height {
		return 0
	}
	return float64(height-hidden) / float64(height)
}
