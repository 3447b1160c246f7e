package flow

// Fixed user-facing texts. Handlers send these verbatim; delivery outcome of
// the operator fan-out never changes what the user sees.
const (
	// TextAck confirms captured input was taken, whatever happened on the
	// operator side.
	TextAck = "Thanks! Your message was passed to the support team. Someone will reply to you here."

	// TextFallback answers free text from an idle user.
	TextFallback = "Please pick an option from the menu, or send /start to see it again."

	// TextCancelled confirms a cancelled input prompt.
	TextCancelled = "Cancelled. You are back at the main menu."

	// TextAskInput prompts for free-form input with the cancel keyboard.
	TextAskInput = "Send your message below and it will be forwarded to the support team."

	// TextRelayClosed tells the user an operator ended the conversation.
	TextRelayClosed = "This conversation has been closed by the support team. Use the menu if you need anything else."

	// TextApproved tells the user their pending request went through.
	TextApproved = "Your request has been approved. The team may follow up here with details."

	// TextQueuedFmt is the gate answer for users with an approved request,
	// parameterized by the feature they asked about.
	TextQueuedFmt = "Your %s request is queued for review. We will message you here once there is news."

	// TextSupportPrefix labels operator relay messages so users always know
	// who is talking.
	TextSupportPrefix = "Support: "
)
