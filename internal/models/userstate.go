package models

// ConversationState represents the state of a conversation with a user
type ConversationState int

const (
	// Default is the initial state
	Default ConversationState = iota
	// AwaitingPromocode is the state when the user is entering a promocode
	AwaitingPromocode
	// AwaitingPromoTraffic is the state when the admin is entering the traffic grant for a new promocode
	AwaitingPromoTraffic
	// AwaitingPromoDuration is the state when the admin is entering the duration grant for a new promocode
	AwaitingPromoDuration
)

// UserState represents the state of a user's conversation
type UserState struct {
	State   ConversationState
	Payload *string
}
