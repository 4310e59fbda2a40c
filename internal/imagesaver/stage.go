package imagesaver

// Stage is a state of one save run.
type Stage int

const (
	StageCheckingPermission Stage = iota
	StageRequestingAuth
	StageSaving
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageCheckingPermission:
		return "checking_permission"
	case StageRequestingAuth:
		return "requesting_auth"
	case StageSaving:
		return "saving"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// event is the outcome of a stage's work that drives the next transition.
type event int

const (
	eventGranted event = iota
	eventNotGranted
	eventSaved
	eventError
)

// transition returns the stage that follows from on ev. The bool is false
// for pairs the machine does not define.
func transition(from Stage, ev event) (Stage, bool) {
	switch from {
	case StageCheckingPermission:
		switch ev {
		case eventGranted:
			return StageSaving, true
		case eventNotGranted:
			return StageRequestingAuth, true
		case eventError:
			return StageFailed, true
		}
	case StageRequestingAuth:
		switch ev {
		case eventGranted:
			return StageSaving, true
		case eventNotGranted, eventError:
			return StageFailed, true
		}
	case StageSaving:
		switch ev {
		case eventSaved:
			return StageDone, true
		case eventError:
			return StageFailed, true
		}
	}

	return from, false
}
