package messenger

// ObjectPage is the only webhook object the relay subscribes to.
const ObjectPage = "page"

// ModeSubscribe is the hub.mode of a subscription handshake.
const ModeSubscribe = "subscribe"

// VerifyRequest holds the hub.* query parameters of the GET handshake.
type VerifyRequest struct {
	Mode      string
	Token     string
	Challenge string
}
