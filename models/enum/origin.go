package enum

// Origin identifies where a checkout request came from. Its value is also
// the prefix of the provider reference.
type Origin string

const (
	OriginOrder Origin = "shopify"
	OriginLink  Origin = "checkout"
)

type OutcomeSource string

const (
	OutcomeSourceWebhook OutcomeSource = "webhook"
	OutcomeSourceReturn  OutcomeSource = "return"
)

type CheckoutMode string

const (
	CheckoutModePage     CheckoutMode = "page"
	CheckoutModeRedirect CheckoutMode = "redirect"
)
