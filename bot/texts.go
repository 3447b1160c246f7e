package bot

// Reply-keyboard button labels. Menu routing matches on the exact label, so
// these strings are the wire contract with the keyboard sent in /start.
const (
	MenuContactSupport = "📨 Contact support"
	MenuServiceStatus  = "📊 Service status"
	MenuFAQ            = "❓ FAQ"
	MenuBilling        = "💳 Billing"
)

// Feature keys used by the menu gate.
const (
	featureStatus  = "status"
	featureFAQ     = "faq"
	featureBilling = "billing"
)

const welcomeText = "Hi! This is the support bot.\n\n" +
	"Use the menu below. Pick \"" + MenuContactSupport + "\" to send a message to the team."

const gateGenericText = "That option is not available right now. " +
	"Pick \"" + MenuContactSupport + "\" if you need a human."

const linkPromptText = "Describe the account you want linked (email or customer number) " +
	"and the team will review it. The message goes straight to them."

// gateMessages answers feature taps for users without an approved request.
// Features absent here get the generic text.
var gateMessages = map[string]string{
	featureStatus: "All services are operating normally. If something looks broken on your side, contact support.",
	featureFAQ:    "Frequent answers live at our help site. For anything else, contact support through the menu.",
}
