package book

import (
	"testing"

	"itchflow/internal/itch"
)

func TestAddAndGet(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 1, Stock: "AAPL", Price: 150, Volume: 100, Side: itch.Buy})

	if s.Len() != 1 {
		t.Fatalf("expected 1 order, got %d", s.Len())
	}
	o, ok := s.Get(1)
	if !ok {
		t.Fatal("order 1 not found")
	}
	if o.Stock != "AAPL" || o.Price != 150 || o.Volume != 100 {
		t.Errorf("unexpected order state: %+v", o)
	}
}

func TestReplaceCarriesStockAndSide(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 5, Stock: "AAPL", Price: 150, Volume: 50, Side: itch.Buy})

	if !s.Replace(5, 6, 30, 149.5) {
		t.Fatal("replace reported failure")
	}

	if _, ok := s.Get(5); ok {
		t.Error("old reference still present after replace")
	}
	o, ok := s.Get(6)
	if !ok {
		t.Fatal("new reference missing after replace")
	}
	if o.Volume != 30 || o.Price != 149.5 {
		t.Errorf("replace did not update volume/price: %+v", o)
	}
	if o.Stock != "AAPL" || o.Side != itch.Buy {
		t.Errorf("replace did not carry stock/side over: %+v", o)
	}
}

func TestReplaceUnknownRefIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 1, Stock: "AAPL", Price: 150, Volume: 50, Side: itch.Buy})

	if s.Replace(99, 100, 10, 1) {
		t.Error("replace of unknown ref reported success")
	}
	if s.Len() != 1 {
		t.Errorf("store size changed: %d", s.Len())
	}
	if _, ok := s.Get(1); !ok {
		t.Error("existing order disturbed by failed replace")
	}
}

func TestDeleteUnknownRefIsNoop(t *testing.T) {
	s := NewStore()
	if s.Delete(7) {
		t.Error("delete of unknown ref reported success")
	}
}

func TestExecutePartialThenFull(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 1, Stock: "AAPL", Price: 150, Volume: 100, Side: itch.Buy})

	stock, price, ok := s.Execute(1, 40)
	if !ok || stock != "AAPL" || price != 150 {
		t.Fatalf("unexpected execute result: %s %v %v", stock, price, ok)
	}
	o, _ := s.Get(1)
	if o.Volume != 60 {
		t.Errorf("expected remaining volume 60, got %d", o.Volume)
	}

	if _, _, ok := s.Execute(1, 60); !ok {
		t.Fatal("second execute failed")
	}
	if s.Len() != 0 {
		t.Errorf("fully executed order still present, store size %d", s.Len())
	}
}

func TestExecuteOverfillRemovesOrder(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 1, Stock: "AAPL", Price: 150, Volume: 10, Side: itch.Buy})

	if _, _, ok := s.Execute(1, 25); !ok {
		t.Fatal("execute failed")
	}
	if s.Len() != 0 {
		t.Error("over-filled order still present")
	}
}

func TestExecuteUnknownRef(t *testing.T) {
	s := NewStore()
	if _, _, ok := s.Execute(404, 10); ok {
		t.Error("execute of unknown ref reported success")
	}
}

func TestViewCloneIsDetached(t *testing.T) {
	s := NewStore()
	s.Add(Order{Ref: 1, Stock: "AAPL", Price: 150, Volume: 100, Side: itch.Buy})

	clone := s.View().Clone()
	s.Execute(1, 100)

	if clone.Len() != 1 {
		t.Errorf("clone affected by later mutation, len %d", clone.Len())
	}
	o, ok := clone.Order(1)
	if !ok || o.Volume != 100 {
		t.Errorf("clone order state changed: %+v ok=%v", o, ok)
	}
}

func TestLedgerPreservesOrder(t *testing.T) {
	l := NewLedger()
	l.Append(Execution{Stock: "AAPL", Price: 150, Volume: 10})
	l.Append(Execution{Stock: "MSFT", Price: 310, Volume: 20})
	l.Append(Execution{Stock: UnknownStock, Price: 0, Volume: 5})

	records := l.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Stock != "AAPL" || records[1].Stock != "MSFT" || records[2].Stock != UnknownStock {
		t.Errorf("records out of order: %+v", records)
	}
}
