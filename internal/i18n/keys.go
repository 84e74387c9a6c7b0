// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Session
	KeySessionExpired  = "session.expired"
	KeySessionLoggedIn = "session.logged_in"
	KeySessionLogout   = "session.logged_out"
	KeyAuthRequired    = "auth.required"

	// Purchase status labels
	KeyStatusCompleted         = "purchase.status.completed"
	KeyStatusConfirmed         = "purchase.status.confirmed"
	KeyStatusDisputeRequested  = "purchase.status.dispute_requested"
	KeyStatusDisputeProcessing = "purchase.status.dispute_processing"
	KeyStatusDisputeResolved   = "purchase.status.dispute_resolved"
	KeyStatusPending           = "purchase.status.pending"
	KeyStatusFailed            = "purchase.status.failed"
	KeyStatusRefunded          = "purchase.status.refunded"
	KeyStatusCancelled         = "purchase.status.cancelled"
	KeyStatusActive            = "purchase.status.active"
	KeyStatusRejected          = "purchase.status.rejected"

	// Purchase flow
	KeyPurchaseSuccess      = "purchase.success"
	KeyPurchaseEmpty        = "purchase.empty"
	KeyDownloadFailed       = "purchase.download_failed"
	KeyDisputeSubmitted     = "dispute.submitted"
	KeyDisputeWindow        = "dispute.window_notice"
	KeyAutoConfirmCountdown = "purchase.auto_confirm_countdown"
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentWaiting       = "payment.waiting"
	KeyPaymentCallbackOK    = "payment.callback_ok"
	KeyPaymentCallbackFail  = "payment.callback_fail"
	KeyPaymentCallbackStale = "payment.callback_stale"

	// Chat
	KeyChatNoConversations = "chat.no_conversations"
	KeyChatUnread          = "chat.unread"

	// Phone verification
	KeyVerificationSent    = "verification.sent"
	KeyVerificationSuccess = "verification.success"

	// Reviews
	KeyReviewSubmitted = "review.submitted"
)
