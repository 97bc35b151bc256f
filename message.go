package mqchat

// Message is one text payload received from another participant. It is
// handed to the Receiver by value and not retained afterwards.
type Message struct {
	Text     string
	SenderID int
}
