package punishment

// BanAction is the escalation decision derived from a warning count.
type BanAction int

const (
	// BanActionNone leaves the ban axis untouched.
	BanActionNone BanAction = iota
	// BanActionApply issues a ban because the count reached the threshold.
	BanActionApply
	// BanActionLift removes a threshold ban because the count dropped
	// back below it.
	BanActionLift
)

// recomputeBanState maps a warning count onto the ban transition. It is
// invoked synchronously after every warning mutation. The add path acts
// only on BanActionApply, so that a warning landing on an explicitly
// banned user never lifts the ban; removal paths act on BanActionLift.
func recomputeBanState(count, threshold int) BanAction {
	if threshold <= 0 {
		return BanActionNone
	}
	if count >= threshold {
		return BanActionApply
	}
	return BanActionLift
}
