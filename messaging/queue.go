// Package messaging decouples the crawler's store writes from whatever
// wants to observe them, behind a small producer/consumer interface pair
// that a RabbitMQ, Kafka, or Redis-backed queue could satisfy just as well
// as the in-memory ChannelQueue this package also provides.
package messaging

// Producer enqueues a single payload of bytes onto a queue.
type Producer interface {
	Produce([]byte) error
}

// Consumer blocks, forwarding every payload it receives off a queue onto
// events, until the underlying queue is closed or exhausted.
type Consumer interface {
	Consume(events chan<- []byte) error
}

// ProducerConsumer is a queue that can both be written to and drained.
type ProducerConsumer interface {
	Producer
	Consumer
}

// ProducerConsumerCloser is a ProducerConsumer backed by a resource that
// must be released once the caller is done with it.
type ProducerConsumerCloser interface {
	ProducerConsumer
	Close()
}
