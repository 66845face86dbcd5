package servo

import "errors"

// ErrTrackingLost indicates the target stayed unobserved past the hysteresis
// threshold.
var ErrTrackingLost = errors.New("servo: tracking lost")
