package config

// NotificationConfig defines configuration for user-facing notifications
type NotificationConfig struct {
	EnableColor bool `json:"enable_color" yaml:"enable_color"`
	// WebhookURL receives a Discord-style post for every diff outcome when set.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	// AttachDiffImage uploads the difference image with success posts.
	AttachDiffImage bool `json:"attach_diff_image" yaml:"attach_diff_image"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		EnableColor:     DefaultNotificationEnableColor,
		AttachDiffImage: DefaultNotificationAttachDiffImage,
	}
}
