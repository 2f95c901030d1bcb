package itch

// Side is the buy/sell indicator carried by add-order messages.
type Side byte

const (
	Buy  Side = 'B'
	Sell Side = 'S'
)

// Message is implemented by every decoded message struct. The scanner
// type-switches on the concrete type to apply the corresponding mutation.
type Message interface {
	// TimestampNanos returns the 48-bit message timestamp, nanoseconds
	// since midnight of the trading session.
	TimestampNanos() uint64
}

// SystemEvent signals session lifecycle changes (market open, close, ...).
type SystemEvent struct {
	Timestamp uint64
	EventCode byte
}

// StockDirectory maps a stock locate code to its ticker symbol.
type StockDirectory struct {
	Timestamp uint64
	Locate    uint16
	Stock     string
}

// AddOrder places a new order on the book. Attribution is empty for plain
// add orders and carries the MPID for attributed ones.
type AddOrder struct {
	Timestamp   uint64
	OrderRef    uint64
	Side        Side
	Shares      uint32
	Stock       string
	Price       float64
	Attribution string
}

// ReplaceOrder moves an order from OldRef to NewRef with updated shares
// and price. Stock and side carry over from the original order.
type ReplaceOrder struct {
	Timestamp uint64
	OldRef    uint64
	NewRef    uint64
	Shares    uint32
	Price     float64
}

// DeleteOrder removes an order from the book.
type DeleteOrder struct {
	Timestamp uint64
	OrderRef  uint64
}

// ExecuteOrder reports shares executed against a resting order at the
// order's own price.
type ExecuteOrder struct {
	Timestamp uint64
	OrderRef  uint64
	Shares    uint32
	MatchID   uint64
}

// ExecuteWithPrice reports an execution at an explicit price. Only
// printable executions affect the book and the ledger.
type ExecuteWithPrice struct {
	Timestamp uint64
	OrderRef  uint64
	Shares    uint32
	MatchID   uint64
	Printable bool
	Price     float64
}

// Trade is a non-cross trade for an order not resident on the book. It is
// self-contained and never touches the book.
type Trade struct {
	Timestamp uint64
	OrderRef  uint64
	Side      Side
	Shares    uint32
	Stock     string
	Price     float64
	MatchID   uint64
}

func (m SystemEvent) TimestampNanos() uint64      { return m.Timestamp }
func (m StockDirectory) TimestampNanos() uint64   { return m.Timestamp }
func (m AddOrder) TimestampNanos() uint64         { return m.Timestamp }
func (m ReplaceOrder) TimestampNanos() uint64     { return m.Timestamp }
func (m DeleteOrder) TimestampNanos() uint64      { return m.Timestamp }
func (m ExecuteOrder) TimestampNanos() uint64     { return m.Timestamp }
func (m ExecuteWithPrice) TimestampNanos() uint64 { return m.Timestamp }
func (m Trade) TimestampNanos() uint64            { return m.Timestamp }
