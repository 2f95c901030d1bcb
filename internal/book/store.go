package book

// Store maps order reference numbers to live orders. It is not safe for
// concurrent use; the feed scanner is its only writer.
type Store struct {
	orders map[uint64]*Order
}

func NewStore() *Store {
	return &Store{orders: make(map[uint64]*Order)}
}

// Add inserts a new order under its reference number.
func (s *Store) Add(o Order) {
	c := o
	s.orders[o.Ref] = &c
}

// Replace moves the order at oldRef to newRef, updating volume and price
// while carrying stock and side over from the original. Replacing an
// unknown reference is a no-op and returns false.
func (s *Store) Replace(oldRef, newRef uint64, shares uint32, price float64) bool {
	o, ok := s.orders[oldRef]
	if !ok {
		return false
	}
	delete(s.orders, oldRef)
	o.Ref = newRef
	o.Volume = shares
	o.Price = price
	s.orders[newRef] = o
	return true
}

// Delete removes the order at ref if present.
func (s *Store) Delete(ref uint64) bool {
	if _, ok := s.orders[ref]; !ok {
		return false
	}
	delete(s.orders, ref)
	return true
}

// Execute decrements the order's remaining volume by qty and removes the
// order once its volume reaches zero. It returns the order's stock and
// pre-execution price. For an unknown reference it returns ok=false and
// the caller falls back to sentinel execution fields.
func (s *Store) Execute(ref uint64, qty uint32) (stock string, price float64, ok bool) {
	o, found := s.orders[ref]
	if !found {
		return "", 0, false
	}
	stock, price = o.Stock, o.Price
	if qty >= o.Volume {
		delete(s.orders, ref)
	} else {
		o.Volume -= qty
	}
	return stock, price, true
}

// Get returns a copy of the order at ref.
func (s *Store) Get(ref uint64) (Order, bool) {
	o, ok := s.orders[ref]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

func (s *Store) Len() int {
	return len(s.orders)
}

// View returns a read-only view over the store's current contents. The
// view is only coherent until the next mutation; asynchronous consumers
// must take a Clone.
func (s *Store) View() View {
	return View{orders: s.orders}
}

// View is a read-only window over a Store (or over a detached clone).
type View struct {
	orders map[uint64]*Order
}

func (v View) Len() int {
	return len(v.orders)
}

// Order returns a copy of the order at ref.
func (v View) Order(ref uint64) (Order, bool) {
	o, ok := v.orders[ref]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Each calls fn for every live order. Iteration order is unspecified.
func (v View) Each(fn func(Order)) {
	for _, o := range v.orders {
		fn(*o)
	}
}

// Clone produces a detached deep copy safe to hand across goroutines.
func (v View) Clone() View {
	orders := make(map[uint64]*Order, len(v.orders))
	for ref, o := range v.orders {
		c := *o
		orders[ref] = &c
	}
	return View{orders: orders}
}
