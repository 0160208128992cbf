package model

import (
	"strconv"
	"time"
)

// Webhook event types delivered by Whop.
const (
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentFailed         = "payment.failed"
	EventPaymentPending        = "payment.pending"
	EventPaymentRefunded       = "payment.refunded"
	EventPaymentAccountOnHold  = "payment.account_on_hold"
	EventMembershipActivated   = "membership.activated"
	EventMembershipDeactivated = "membership.deactivated"
	EventMembershipCancelled   = "membership.cancelled"
	EventMembershipWentValid   = "membership.went_valid"
	EventMembershipWentInvalid = "membership.went_invalid"
)

// Event is the envelope of an inbound provider webhook.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the payload of a payment or membership event. Not all
// fields are present for every event type; in particular membership events
// do not include an email address.
type EventData struct {
	ID                 string                `json:"id"`
	Email              string                `json:"email"`
	User               *EventUser            `json:"user"`
	Product            *EventProduct         `json:"product"`
	FinalAmount        *int64                `json:"final_amount"`
	Subtotal           *int64                `json:"subtotal"`
	RefundedAmount     *int64                `json:"refunded_amount"`
	Currency           string                `json:"currency"`
	FailureReason      string                `json:"failure_reason"`
	PaymentMethod      string                `json:"payment_method"`
	RefundReason       string                `json:"refund_reason"`
	DeactivationReason string                `json:"deactivation_reason"`
	CancellationReason string                `json:"cancellation_reason"`
	CheckoutSession    *EventCheckoutSession `json:"checkout_session"`
	Metadata           map[string]any        `json:"metadata"`
}

// EventUser is the user sub-object attached to payment events.
type EventUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// EventProduct identifies the purchased product.
type EventProduct struct {
	Title string `json:"title"`
}

// EventCheckoutSession carries checkout metadata set at checkout init time.
type EventCheckoutSession struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
}

// UserID returns the provider user id, empty when no user object is present.
func (d EventData) UserID() string {
	if d.User != nil {
		return d.User.ID
	}
	return ""
}

// BestEmail reads the email from the user sub-object if present, else from
// the top-level field. Empty means the event carried no email at all.
func (d EventData) BestEmail() string {
	if d.User != nil && d.User.Email != "" {
		return d.User.Email
	}
	return d.Email
}

// UserName returns the display name from the user sub-object.
func (d EventData) UserName() string {
	if d.User != nil {
		return d.User.Name
	}
	return ""
}

// Username returns the handle from the user sub-object.
func (d EventData) Username() string {
	if d.User != nil {
		return d.User.Username
	}
	return ""
}

// ProductTitle returns the product title, empty when absent.
func (d EventData) ProductTitle() string {
	if d.Product != nil {
		return d.Product.Title
	}
	return ""
}

// Meta returns checkout-session metadata when present, falling back to the
// top-level metadata object.
func (d EventData) Meta() map[string]any {
	if d.CheckoutSession != nil && d.CheckoutSession.Metadata != nil {
		return d.CheckoutSession.Metadata
	}
	return d.Metadata
}

// AnonymousID returns the attribution id captured at checkout init.
func (d EventData) AnonymousID() string {
	meta := d.Meta()
	if v := metaString(meta, "aurea_anonymous_id"); v != "" {
		return v
	}
	return metaString(meta, "aurea_id")
}

// SessionID returns the tracking session id, defaulting to the anonymous id.
func (d EventData) SessionID() string {
	if v := metaString(d.Meta(), "aurea_session_id"); v != "" {
		return v
	}
	return d.AnonymousID()
}

// FunnelStage returns the funnel stage recorded at checkout, default "checkout".
func (d EventData) FunnelStage() string {
	if v := metaString(d.Meta(), "funnel_stage"); v != "" {
		return v
	}
	return "checkout"
}

// CheckoutStartedAt parses the checkout start timestamp (unix milliseconds,
// stored as a string in checkout metadata).
func (d EventData) CheckoutStartedAt() (time.Time, bool) {
	raw := metaString(d.Meta(), "checkout_started_at")
	if raw == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
