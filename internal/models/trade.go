package models

import (
	"fmt"
	"strings"
)

// Trade is an installer's work specialty.
type Trade string

const (
	TradeTrim   Trade = "trim"
	TradeStairs Trade = "stairs"
	TradeDoors  Trade = "doors"
)

// Trades lists every trade in processing order.
var Trades = []Trade{TradeTrim, TradeStairs, TradeDoors}

func (t Trade) Valid() bool {
	switch t {
	case TradeTrim, TradeStairs, TradeDoors:
		return true
	}
	return false
}

func ParseTrade(s string) (Trade, error) {
	t := Trade(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown trade %q", s)
	}
	return t, nil
}
