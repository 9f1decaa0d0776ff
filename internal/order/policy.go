package order

// Status is the lifecycle state of an order.
type Status string

const (
	StatusCooking    Status = "COOKING"
	StatusReady      Status = "READY"
	StatusServed     Status = "SERVED"
	StatusDelivering Status = "DELIVERING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus validates a wire status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCooking, StatusReady, StatusServed,
		StatusDelivering, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Kind selects which transition graph applies to an order.
type Kind int

const (
	KindDineIn Kind = iota
	KindDelivery
	KindPickup
)

func (k Kind) String() string {
	switch k {
	case KindDineIn:
		return "dine_in"
	case KindDelivery:
		return "delivery"
	case KindPickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// graphs maps each status to its single forward successor.
var graphs = map[Kind]map[Status]Status{
	KindDineIn: {
		StatusCooking: StatusReady,
		StatusReady:   StatusServed,
		StatusServed:  StatusCompleted,
	},
	KindDelivery: {
		StatusCooking:    StatusReady,
		StatusReady:      StatusDelivering,
		StatusDelivering: StatusCompleted,
	},
	KindPickup: {
		StatusCooking: StatusReady,
		StatusReady:   StatusCompleted,
	},
}

// Next returns the forward successor of from in kind's graph.
func Next(kind Kind, from Status) (Status, bool) {
	next, ok := graphs[kind][from]
	return next, ok
}

// CanTransition checks a status change against kind's graph.
// CANCELLED is accepted from any non-terminal state; whether a given user may
// cancel at that point is for the caller to decide.
func CanTransition(kind Kind, from, to Status) error {
	if from.Terminal() {
		return &TransitionError{From: from, To: to}
	}
	if to == StatusCancelled {
		return nil
	}
	if next, ok := Next(kind, from); ok && next == to {
		return nil
	}
	return &TransitionError{From: from, To: to}
}
