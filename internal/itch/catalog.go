package itch

// payloadLengths maps a TotalView-ITCH 5.0 message type code to the number
// of payload bytes that follow it in the stream. The stream itself carries
// no length prefix, so framing depends entirely on this table.
var payloadLengths = map[byte]int{
	'S': 11, // system event
	'R': 38, // stock directory
	'H': 24, // stock trading action
	'Y': 19, // reg SHO restriction
	'L': 25, // market participant position
	'V': 34, // MWCB decline level
	'W': 11, // MWCB status
	'K': 27, // IPO quoting period update
	'J': 34, // LULD auction collar
	'h': 20, // operational halt
	'A': 35, // add order
	'F': 39, // add order with MPID attribution
	'E': 30, // order executed
	'C': 35, // order executed with price
	'X': 22, // order cancel
	'D': 18, // order delete
	'U': 34, // order replace
	'P': 43, // trade (non-cross)
	'Q': 39, // cross trade
	'B': 18, // broken trade
	'I': 49, // net order imbalance indicator
	'N': 19, // retail interest message
}

// PayloadLength returns the payload length for a message type code. The
// second return value is false for codes outside the known type set; the
// caller decides whether to resync or abort.
func PayloadLength(code byte) (int, bool) {
	n, ok := payloadLengths[code]
	return n, ok
}

// TypeCount reports how many message types the catalog knows about.
func TypeCount() int {
	return len(payloadLengths)
}
