// Package friction watches item-activation patterns for signs the user
// is repeatedly re-copying content, and gates a one-time enhancement
// suggestion behind a cooldown. It is a heuristic signal generator, not
// a hard gate: only the threshold arithmetic must be reproducible.
package friction

import "time"

// State is the detector's position in its lifecycle.
type State string

const (
	StateNormal           State = "normal"
	StateFrictionDetected State = "friction_detected"
	StateGuiding          State = "guiding"
	StateCooldown         State = "cooldown"
)

// Detection thresholds.
const (
	// DefaultWindow is the sliding window clicks are evaluated over.
	DefaultWindow = 30 * time.Second

	// DefaultCooldown is how long a dismissal suppresses the guide.
	DefaultCooldown = 24 * time.Hour

	// MaxGuideShows caps how many times the guide is ever offered.
	MaxGuideShows = 3

	// sameItemThreshold trips detection when one item is clicked this
	// many times within the window.
	sameItemThreshold = 3

	// anyItemThreshold trips detection when total clicks within the
	// window reach this count.
	anyItemThreshold = 5
)

type click struct {
	itemID string
	at     time.Time
}

// Detector is the friction state machine. Not internally locked; the
// serialized owner (internal/engine) guards all calls.
type Detector struct {
	window   time.Duration
	cooldown time.Duration
	now      func() time.Time

	state         State
	clicks        []click
	lastDismissed time.Time
	shownCount    int

	// enhancedPasteActive mirrors the external capability: once the
	// enhancement is on, there is nothing left to suggest.
	enhancedPasteActive bool
}

// New creates a Detector with the default window and cooldown.
func New() *Detector {
	return &Detector{
		window:   DefaultWindow,
		cooldown: DefaultCooldown,
		now:      time.Now,
		state:    StateNormal,
	}
}

// SetNow overrides the clock for tests.
func (d *Detector) SetNow(now func() time.Time) { d.now = now }

// SetEnhancedPasteActive records whether the suggested capability is
// already enabled.
func (d *Detector) SetEnhancedPasteActive(active bool) { d.enhancedPasteActive = active }

// State returns the current state.
func (d *Detector) State() State { return d.state }

// TrackClick appends an activation to the rolling log and re-evaluates
// detection. Entries older than twice the window are pruned on each call.
func (d *Detector) TrackClick(itemID string) {
	now := d.now()
	d.clicks = append(d.clicks, click{itemID: itemID, at: now})
	d.prune(now)

	// Cooldown expires on its own; guiding is permanent for the session.
	if d.state == StateCooldown && now.Sub(d.lastDismissed) > d.cooldown {
		d.state = StateNormal
	}

	if d.state != StateNormal && d.state != StateFrictionDetected {
		return
	}
	if d.detect(now) {
		d.state = StateFrictionDetected
	} else {
		d.state = StateNormal
	}
}

// ShouldShowGuide reports whether the enhancement guide should surface
// right now: friction is detected, the capability is not already on, the
// dismissal cooldown has elapsed, and the show cap is not exhausted.
func (d *Detector) ShouldShowGuide() bool {
	if d.enhancedPasteActive {
		return false
	}
	if d.state != StateFrictionDetected {
		return false
	}
	if d.shownCount >= MaxGuideShows {
		return false
	}
	if !d.lastDismissed.IsZero() && d.now().Sub(d.lastDismissed) <= d.cooldown {
		return false
	}
	return true
}

// UserDismissedGuide records a dismissal: the click log clears and the
// detector parks in cooldown.
func (d *Detector) UserDismissedGuide() {
	d.state = StateCooldown
	d.clicks = nil
	d.lastDismissed = d.now()
}

// UserAcceptedGuide counts a show and moves to guiding.
func (d *Detector) UserAcceptedGuide() {
	d.shownCount++
	d.state = StateGuiding
}

// MarkGuideShown counts a show and moves to guiding.
func (d *Detector) MarkGuideShown() {
	d.shownCount++
	d.state = StateGuiding
}

// ResetDetection clears the click log and returns frictionDetected to
// normal. Guiding and cooldown are deliberately left alone.
func (d *Detector) ResetDetection() {
	d.clicks = nil
	if d.state == StateFrictionDetected {
		d.state = StateNormal
	}
}

// detect applies the thresholds over the last window: any single item
// clicked sameItemThreshold times, or anyItemThreshold clicks total.
func (d *Detector) detect(now time.Time) bool {
	cutoff := now.Add(-d.window)
	perItem := make(map[string]int)
	total := 0
	for _, c := range d.clicks {
		if c.at.Before(cutoff) {
			continue
		}
		total++
		perItem[c.itemID]++
		if perItem[c.itemID] >= sameItemThreshold {
			return true
		}
	}
	return total >= anyItemThreshold
}

// prune drops log entries older than twice the window.
func (d *Detector) prune(now time.Time) {
	cutoff := now.Add(-2 * d.window)
	kept := d.clicks[:0]
	for _, c := range d.clicks {
		if !c.at.Before(cutoff) {
			kept = append(kept, c)
		}
	}
	d.clicks = kept
}
