package utils

import (
	"testing"
	"time"
)

func TestBeginningOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 45, 12, 999, time.UTC)
	got := BeginningOfDay(ts)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"+919876543210", "9876543210", "+1 (415) 555-2671"}
	for _, phone := range valid {
		if !ValidatePhone(phone) {
			t.Errorf("expected %q to be valid", phone)
		}
	}

	invalid := []string{"", "abc", "+0123", "12345678901234567890"}
	for _, phone := range invalid {
		if ValidatePhone(phone) {
			t.Errorf("expected %q to be invalid", phone)
		}
	}
}

func TestValidateTimeSlot(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, slot := range valid {
		if !ValidateTimeSlot(slot) {
			t.Errorf("expected %q to be valid", slot)
		}
	}

	invalid := []string{"24:00", "9:30", "09:60", "0930", ""}
	for _, slot := range invalid {
		if ValidateTimeSlot(slot) {
			t.Errorf("expected %q to be invalid", slot)
		}
	}
}
