package notify

import "context"

// Delivery is the outcome of one channel attempt. Status is always one of
// delivered, failed or skipped; Reason explains anything short of delivered.
type Delivery struct {
	Status Status
	Reason string
}

func delivered() Delivery {
	return Delivery{Status: StatusDelivered}
}

func skipped(reason string) Delivery {
	return Delivery{Status: StatusSkipped, Reason: reason}
}

func failed(reason string) Delivery {
	return Delivery{Status: StatusFailed, Reason: reason}
}

// ChannelAdapter delivers one rendered notification over one medium.
// Implementations must not panic or return errors to the caller; every
// failure mode reduces to a Delivery so the dispatcher can move on to the
// next channel.
type ChannelAdapter interface {
	Channel() Channel
	Deliver(ctx context.Context, userID string, t Type, data Data) Delivery
}
