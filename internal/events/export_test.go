package events

// NewPublisherForTest exposes the channel-injecting constructor to the
// external test package.
var NewPublisherForTest = newPublisher

// Channel exposes the channel interface for test doubles.
type Channel = channel
