package orders

type Status string

const (
	StatusKitchen   Status = "kitchen"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServedOut Status = "servedOut"
	StatusPaid      Status = "paid"
)

// Forward transitions only; servedOut is an optional waypoint between
// ready and paid.
var validNext = map[Status]map[Status]bool{
	StatusKitchen:   {StatusPreparing: true},
	StatusPreparing: {StatusReady: true},
	StatusReady:     {StatusServedOut: true, StatusPaid: true},
	StatusServedOut: {StatusPaid: true},
	StatusPaid:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func KnownStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether an order no longer holds its table.
func (s Status) Terminal() bool { return s == StatusPaid }
