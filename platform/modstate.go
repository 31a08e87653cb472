package platform

import "markestedt/hyperspace/keys"

// modifierState tracks which modifier keys are down when the OS only
// reports a combined mask per modifier.
type modifierState map[keys.Code]bool

// update flips code on a flags-changed event and returns whether it is now
// down. A clear mask bit means every key of that modifier is up.
func (s modifierState) update(code keys.Code, maskSet bool) bool {
	if !maskSet {
		delete(s, code)
		return false
	}
	if s[code] {
		delete(s, code)
		return false
	}
	s[code] = true
	return true
}
