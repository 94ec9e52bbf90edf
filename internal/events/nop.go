package events

// NopPublisher discards every event. Used when no brokers are configured.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (*NopPublisher) Publish(string, any) error {
	return nil
}
