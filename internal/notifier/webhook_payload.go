package notifier

// Embed colours.
const (
	SuccessEmbedColor = 0x5CB85C
	ErrorEmbedColor   = 0xD9534F
	InfoEmbedColor    = 0x5BC0DE
)

const webhookUsername = "odiffkit"

// WebhookPayload is a Discord-compatible webhook message.
type WebhookPayload struct {
	Content  string         `json:"content,omitempty"`
	Username string         `json:"username,omitempty"`
	Embeds   []WebhookEmbed `json:"embeds,omitempty"`
}

// WebhookEmbed is one embed of a WebhookPayload.
type WebhookEmbed struct {
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Timestamp   string             `json:"timestamp,omitempty"`
	Color       int                `json:"color,omitempty"`
	Image       *WebhookEmbedImage `json:"image,omitempty"`
}

// WebhookEmbedImage points at an http(s) URL or an attachment://name.
type WebhookEmbedImage struct {
	URL string `json:"url"`
}

func embedColor(kind Kind) int {
	switch kind {
	case KindSuccess:
		return SuccessEmbedColor
	case KindError:
		return ErrorEmbedColor
	default:
		return InfoEmbedColor
	}
}
