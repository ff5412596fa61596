package outlook

import "go-outlook-starter/core/eventbus"

// Lifecycle events emitted by the Outlook integration. Credential events are
// produced by the OAuth callback; change notifications by the Graph webhook.
const (
	EventUserAuthenticated eventbus.Kind = "outlook.user_authenticated"
	EventTokensSave        eventbus.Kind = "outlook.auth_tokens_save"

	EventCalendarEventCreated eventbus.Kind = "outlook.event_created"
	EventCalendarEventUpdated eventbus.Kind = "outlook.event_updated"
	EventCalendarEventDeleted eventbus.Kind = "outlook.event_deleted"

	EventEmailReceived eventbus.Kind = "outlook.email_received"
	EventEmailUpdated  eventbus.Kind = "outlook.email_updated"
	EventEmailDeleted  eventbus.Kind = "outlook.email_deleted"
)

// UserAuthenticatedPayload announces a completed OAuth flow. It carries no
// tokens; the subscriber looks the default calendar up itself.
type UserAuthenticatedPayload struct {
	LocalUserID    int64  `json:"local_user_id"`
	ExternalUserID string `json:"external_user_id"`
	Email          string `json:"email"`
}

// TokensSavePayload carries a freshly issued token pair for persistence.
type TokensSavePayload struct {
	LocalUserID    int64  `json:"local_user_id"`
	ExternalUserID string `json:"external_user_id"`
	Email          string `json:"email"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	ExpiresIn      int64  `json:"expires_in"`
}

// ChangeNotification is one entry of a Microsoft Graph change notification
// batch delivered to the webhook.
type ChangeNotification struct {
	SubscriptionID string `json:"subscriptionId"`
	ChangeType     string `json:"changeType"`
	Resource       string `json:"resource"`
	ResourceData   struct {
		ODataType string `json:"@odata.type"`
		ID        string `json:"id"`
	} `json:"resourceData"`
}
