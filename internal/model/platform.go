package model

// platformUnknownStr is the string representation for unknown platform values.
const platformUnknownStr = "unknown"

// SocialPlatform represents a social media platform detected on a site.
type SocialPlatform string

// Social media platform constants.
const (
	// SocialPlatformUnknown represents an unknown platform.
	SocialPlatformUnknown SocialPlatform = ""
	// SocialPlatformTwitter represents Twitter/X.
	SocialPlatformTwitter SocialPlatform = "twitter"
	// SocialPlatformGitHub represents GitHub.
	SocialPlatformGitHub SocialPlatform = "github"
	// SocialPlatformLinkedIn represents LinkedIn.
	SocialPlatformLinkedIn SocialPlatform = "linkedin"
	// SocialPlatformFacebook represents Facebook.
	SocialPlatformFacebook SocialPlatform = "facebook"
	// SocialPlatformInstagram represents Instagram.
	SocialPlatformInstagram SocialPlatform = "instagram"
	// SocialPlatformYouTube represents YouTube.
	SocialPlatformYouTube SocialPlatform = "youtube"
	// SocialPlatformTikTok represents TikTok.
	SocialPlatformTikTok SocialPlatform = "tiktok"
	// SocialPlatformDiscord represents Discord.
	SocialPlatformDiscord SocialPlatform = "discord"
	// SocialPlatformReddit represents Reddit.
	SocialPlatformReddit SocialPlatform = "reddit"
	// SocialPlatformMedium represents Medium.
	SocialPlatformMedium SocialPlatform = "medium"
)

// String returns the string representation of the SocialPlatform.
func (p SocialPlatform) String() string {
	if p == SocialPlatformUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known platform.
func (p SocialPlatform) IsValid() bool {
	switch p {
	case SocialPlatformTwitter, SocialPlatformGitHub, SocialPlatformLinkedIn,
		SocialPlatformFacebook, SocialPlatformInstagram, SocialPlatformYouTube,
		SocialPlatformTikTok, SocialPlatformDiscord, SocialPlatformReddit,
		SocialPlatformMedium:
		return true
	default:
		return false
	}
}

// ParseSocialPlatform converts a string to a SocialPlatform.
// Returns SocialPlatformUnknown for unrecognized input.
func ParseSocialPlatform(s string) SocialPlatform {
	p := SocialPlatform(s)
	if p.IsValid() {
		return p
	}
	return SocialPlatformUnknown
}

// DisplayName returns the platform's proper name for report rendering.
func (p SocialPlatform) DisplayName() string {
	if name, ok := socialPlatformNames[p]; ok {
		return name
	}
	return titleCase(p.String())
}

// socialPlatformNames maps platforms to their proper display names.
// Platforms whose proper name is not a plain title-cased word live here;
// everything else falls back to titleCase.
var socialPlatformNames = map[SocialPlatform]string{
	SocialPlatformTwitter:  "Twitter/X",
	SocialPlatformGitHub:   "GitHub",
	SocialPlatformLinkedIn: "LinkedIn",
	SocialPlatformYouTube:  "YouTube",
	SocialPlatformTikTok:   "TikTok",
}

// AnalyticsPlatform represents an analytics or tracking platform.
type AnalyticsPlatform string

// Analytics platform constants.
const (
	// AnalyticsPlatformUnknown represents an unknown analytics platform.
	AnalyticsPlatformUnknown AnalyticsPlatform = ""
	// AnalyticsPlatformGoogleUA represents legacy Google Analytics (UA- IDs).
	AnalyticsPlatformGoogleUA AnalyticsPlatform = "google_analytics_ua"
	// AnalyticsPlatformGoogleGA4 represents Google Analytics 4 (G- IDs).
	AnalyticsPlatformGoogleGA4 AnalyticsPlatform = "google_analytics_4"
	// AnalyticsPlatformGTM represents Google Tag Manager (GTM- IDs).
	AnalyticsPlatformGTM AnalyticsPlatform = "google_tag_manager"
	// AnalyticsPlatformMetaPixel represents the Meta (Facebook) pixel.
	AnalyticsPlatformMetaPixel AnalyticsPlatform = "meta_pixel"
	// AnalyticsPlatformHotjar represents Hotjar.
	AnalyticsPlatformHotjar AnalyticsPlatform = "hotjar"
	// AnalyticsPlatformClarity represents Microsoft Clarity.
	AnalyticsPlatformClarity AnalyticsPlatform = "clarity"
	// AnalyticsPlatformYandex represents Yandex Metrica.
	AnalyticsPlatformYandex AnalyticsPlatform = "yandex_metrica"
	// AnalyticsPlatformMatomo represents Matomo.
	AnalyticsPlatformMatomo AnalyticsPlatform = "matomo"
)

// String returns the string representation of the AnalyticsPlatform.
func (p AnalyticsPlatform) String() string {
	if p == AnalyticsPlatformUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known analytics platform.
func (p AnalyticsPlatform) IsValid() bool {
	switch p {
	case AnalyticsPlatformGoogleUA, AnalyticsPlatformGoogleGA4,
		AnalyticsPlatformGTM, AnalyticsPlatformMetaPixel,
		AnalyticsPlatformHotjar, AnalyticsPlatformClarity,
		AnalyticsPlatformYandex, AnalyticsPlatformMatomo:
		return true
	default:
		return false
	}
}

// PaymentProvider represents a payment or billing provider referenced
// by a site.
type PaymentProvider string

// Payment provider constants.
const (
	// PaymentProviderUnknown represents an unknown provider.
	PaymentProviderUnknown PaymentProvider = ""
	// PaymentProviderStripe represents Stripe.
	PaymentProviderStripe PaymentProvider = "stripe"
	// PaymentProviderPayPal represents PayPal.
	PaymentProviderPayPal PaymentProvider = "paypal"
	// PaymentProviderPaddle represents Paddle.
	PaymentProviderPaddle PaymentProvider = "paddle"
	// PaymentProviderShopify represents Shopify checkout.
	PaymentProviderShopify PaymentProvider = "shopify"
	// PaymentProviderLemonSqueezy represents Lemon Squeezy.
	PaymentProviderLemonSqueezy PaymentProvider = "lemonsqueezy"
	// PaymentProviderGumroad represents Gumroad.
	PaymentProviderGumroad PaymentProvider = "gumroad"
	// PaymentProviderBraintree represents Braintree.
	PaymentProviderBraintree PaymentProvider = "braintree"
)

// String returns the string representation of the PaymentProvider.
func (p PaymentProvider) String() string {
	if p == PaymentProviderUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known payment provider.
func (p PaymentProvider) IsValid() bool {
	switch p {
	case PaymentProviderStripe, PaymentProviderPayPal, PaymentProviderPaddle,
		PaymentProviderShopify, PaymentProviderLemonSqueezy,
		PaymentProviderGumroad, PaymentProviderBraintree:
		return true
	default:
		return false
	}
}

// DisplayName returns the provider's proper name for report rendering.
func (p PaymentProvider) DisplayName() string {
	if name, ok := paymentProviderNames[p]; ok {
		return name
	}
	return titleCase(p.String())
}

// paymentProviderNames maps providers whose proper name differs from the
// title-cased identifier.
var paymentProviderNames = map[PaymentProvider]string{
	PaymentProviderPayPal:       "PayPal",
	PaymentProviderLemonSqueezy: "Lemon Squeezy",
}
