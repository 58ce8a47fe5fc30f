package commands

// Button labels and commands understood by the bot
const (
	Start             = "/start"
	MySubscription    = "📊 My subscription"
	SubscriptionKey   = "🔑 Subscription key"
	ActivatePromocode = "🎁 Activate promocode"
	NewPromocode      = "➕ New promocode"
	Stats             = "📈 Stats"
	ReturnToMainMenu  = "⬅️ Main menu"
	Cancel            = "❌ Cancel"
)
