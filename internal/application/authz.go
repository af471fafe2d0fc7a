package application

// CanModifyBooking reports whether the principal may edit or cancel the
// booking. Only the owning user and administrators qualify.
func CanModifyBooking(principal Principal, booking Booking) bool {
	if principal.IsAdmin() {
		return true
	}
	return principal.UserID != "" && principal.UserID == booking.UserID
}
