package itch

import (
	"encoding/binary"
	"strings"
)

// Field offsets shared by every order-flow message: stock locate at 0,
// tracking number at 2, timestamp at 4, first payload field at 10.
const (
	offTimestamp = 4
	offBody      = 10
)

// Decode interprets the payload of a single message. The payload must be
// exactly the catalog length for the code; the scanner enforces that
// before calling. Codes that carry no order-book semantics (trading
// actions, auction collars, imbalance indicators, ...) decode to nil and
// are consumed for framing only.
//
// All fields are big-endian per the ITCH wire format.
func Decode(code byte, payload []byte) Message {
	switch code {
	case 'S':
		return SystemEvent{
			Timestamp: timestamp48(payload[offTimestamp:]),
			EventCode: payload[10],
		}
	case 'R':
		return StockDirectory{
			Timestamp: timestamp48(payload[offTimestamp:]),
			Locate:    binary.BigEndian.Uint16(payload[0:2]),
			Stock:     symbol(payload[10:18]),
		}
	case 'A', 'F':
		m := AddOrder{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OrderRef:  binary.BigEndian.Uint64(payload[offBody : offBody+8]),
			Side:      Side(payload[18]),
			Shares:    binary.BigEndian.Uint32(payload[19:23]),
			Stock:     symbol(payload[23:31]),
			Price:     price4(payload[31:35]),
		}
		if code == 'F' {
			m.Attribution = strings.TrimRight(string(payload[35:39]), " ")
		}
		return m
	case 'U':
		return ReplaceOrder{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OldRef:    binary.BigEndian.Uint64(payload[10:18]),
			NewRef:    binary.BigEndian.Uint64(payload[18:26]),
			Shares:    binary.BigEndian.Uint32(payload[26:30]),
			Price:     price4(payload[30:34]),
		}
	case 'D':
		return DeleteOrder{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OrderRef:  binary.BigEndian.Uint64(payload[10:18]),
		}
	case 'E':
		return ExecuteOrder{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OrderRef:  binary.BigEndian.Uint64(payload[10:18]),
			Shares:    binary.BigEndian.Uint32(payload[18:22]),
			MatchID:   binary.BigEndian.Uint64(payload[22:30]),
		}
	case 'C':
		return ExecuteWithPrice{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OrderRef:  binary.BigEndian.Uint64(payload[10:18]),
			Shares:    binary.BigEndian.Uint32(payload[18:22]),
			MatchID:   binary.BigEndian.Uint64(payload[22:30]),
			Printable: payload[30] == 'Y',
			Price:     price4(payload[31:35]),
		}
	case 'P':
		return Trade{
			Timestamp: timestamp48(payload[offTimestamp:]),
			OrderRef:  binary.BigEndian.Uint64(payload[10:18]),
			Side:      Side(payload[18]),
			Shares:    binary.BigEndian.Uint32(payload[19:23]),
			Stock:     symbol(payload[23:31]),
			Price:     price4(payload[31:35]),
			MatchID:   binary.BigEndian.Uint64(payload[35:43]),
		}
	}
	return nil
}

// timestamp48 widens a 6-byte big-endian timestamp to uint64.
func timestamp48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// price4 converts a 4-byte price field with four implied decimal digits.
func price4(b []byte) float64 {
	return float64(binary.BigEndian.Uint32(b)) / 10000
}

// symbol trims the right-padding from a fixed-width ticker field.
func symbol(b []byte) string {
	return strings.TrimRight(string(b), " ")
}
