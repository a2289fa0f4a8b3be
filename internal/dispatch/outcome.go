package dispatch

// Outcome classifies how a delivery attempt ended. Outcomes are logged and
// dropped: never retried, never persisted, never surfaced to the HTTP
// caller, who has already received a receipt acknowledgment.
type Outcome string

const (
	// OutcomeDelivered means the direct message was accepted by the platform.
	OutcomeDelivered Outcome = "delivered"

	// OutcomeGuildNotFound means the guild is neither cached nor fetchable.
	OutcomeGuildNotFound Outcome = "guild_not_found"

	// OutcomeNotAMember means the recipient is not in the guild.
	OutcomeNotAMember Outcome = "not_a_member"

	// OutcomeMissingRole means the recipient lacks the required role.
	OutcomeMissingRole Outcome = "missing_role"

	// OutcomeRecipientUnreachable means the recipient does not accept
	// direct messages from the bot.
	OutcomeRecipientUnreachable Outcome = "recipient_unreachable"

	// OutcomeTransientError covers every other remote or protocol failure.
	// The attempt is still terminal; retry is out of scope.
	OutcomeTransientError Outcome = "transient_error"
)
