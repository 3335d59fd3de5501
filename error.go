package orderbook

import "errors"

var (
	ErrSequenceGap = errors.New("book log sequence gap detected")
)
