package notification

import (
	"fmt"

	"campstay/models"
)

const checkInLayout = "Monday, 2 January"

func stayName(n models.BookingNotice) string {
	if n.Title != "" {
		return n.Title
	}
	return "your stay"
}

func noticeData(n models.BookingNotice, kind string) map[string]string {
	return map[string]string{
		"type":      kind,
		"bookingId": n.BookingID,
		"source":    string(n.Source),
		"checkIn":   n.CheckIn.String(),
	}
}

// BookingConfirmedMessage renders the push sent once a booking is confirmed.
func BookingConfirmedMessage(n models.BookingNotice) Message {
	body := fmt.Sprintf("Your booking for %s on %s is confirmed.", stayName(n), n.CheckIn.Format(checkInLayout))
	if n.PaymentMethod == models.PayOnline {
		body += " We've received your payment."
	} else {
		body += " Please pay at the property on arrival."
	}
	return Message{
		Title: "Booking Confirmed!",
		Body:  body,
		Data:  noticeData(n, "booking_confirmed"),
	}
}

// StayReminderMessage renders the reminder sent the day before check-in.
func StayReminderMessage(n models.BookingNotice) Message {
	return Message{
		Title: "Your stay starts tomorrow",
		Body:  fmt.Sprintf("Check-in for %s is on %s. Have a great trip!", stayName(n), n.CheckIn.Format(checkInLayout)),
		Data:  noticeData(n, "stay_reminder"),
	}
}
