package common

// AuthorizationHeaderName is the HTTP header carrying the credential token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// ClientIDHeaderName carries the per-install client id, generated once and
// persisted. The backend may use it to correlate repeated submissions.
const ClientIDHeaderName = "X-Client-Id"

// CheckOutConfirmationPhrase must be typed by the user before a check-out
// request is sent. Check-out cannot be undone.
const CheckOutConfirmationPhrase = "confirm"
