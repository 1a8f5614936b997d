package parking

const (
	MinParkingMinutes = 10
	MaxParkingMinutes = 719

	// RolloverAdjustment is the length of the 08.00-20.00 business day. A
	// payment whose end precedes its start runs into the next business day.
	RolloverAdjustment = 720
)

// ParkingDuration is the number of business-day minutes from start to end.
func ParkingDuration(start, end MinuteOfDay) int {
	duration := int(end - start)
	if duration < 0 {
		duration += RolloverAdjustment
	}
	return duration
}

// IsParkingTimeValid reports whether start..end lasts between MinParkingMinutes
// and MaxParkingMinutes.
func IsParkingTimeValid(start, end MinuteOfDay) bool {
	duration := ParkingDuration(start, end)
	return duration >= MinParkingMinutes && duration <= MaxParkingMinutes
}
