package reminder

var minutesPer = map[TimingUnit]float64{
	Minutes: 1,
	Hours:   60,
	Days:    60 * 24,
	Weeks:   60 * 24 * 7,
}

// unitMinutes returns the size of u in minutes. Unknown units are read as
// minutes.
func unitMinutes(u TimingUnit) float64 {
	if m, ok := minutesPer[u]; ok {
		return m
	}
	return 1
}

// ToMinutes returns the lead time of t in minutes.
func ToMinutes(t Timing) float64 {
	return t.Value * unitMinutes(t.Unit)
}

// FromMinutes expresses minutes in unit.
func FromMinutes(minutes float64, unit TimingUnit) float64 {
	return minutes / unitMinutes(unit)
}

// ConvertToTimingUnit converts value between units by pivoting through
// minutes. Conversions to the same unit return value untouched.
func ConvertToTimingUnit(value float64, from, to TimingUnit) float64 {
	if from == to {
		return value
	}
	return FromMinutes(value*unitMinutes(from), to)
}
