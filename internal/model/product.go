package model

import (
	"strings"
	"time"
)

type Product struct {
	ID          string
	Name        string
	Description string
}

// StockRecord is the single mutable counter per product. It is only ever
// written through the store's atomic operations.
type StockRecord struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}

type DeliverySlot string

const (
	SlotMorning   DeliverySlot = "MORNING"
	SlotAfternoon DeliverySlot = "AFTERNOON"
	SlotEvening   DeliverySlot = "EVENING"
)

var slotLabels = map[DeliverySlot]string{
	SlotMorning:   "8AM - 11AM",
	SlotAfternoon: "12PM - 3PM",
	SlotEvening:   "4PM - 7PM",
}

func (s DeliverySlot) Label() string {
	return slotLabels[s]
}

// Slots returns the fixed slot enumeration in delivery order.
func Slots() []DeliverySlot {
	return []DeliverySlot{SlotMorning, SlotAfternoon, SlotEvening}
}

// SlotNames lists the valid slot identifiers, used in validation messages.
func SlotNames() []string {
	names := make([]string, 0, len(slotLabels))
	for _, s := range Slots() {
		names = append(names, string(s))
	}
	return names
}

// ParseSlot matches a slot identifier case-insensitively.
func ParseSlot(input string) (DeliverySlot, bool) {
	s := DeliverySlot(strings.ToUpper(strings.TrimSpace(input)))
	_, ok := slotLabels[s]
	return s, ok
}
