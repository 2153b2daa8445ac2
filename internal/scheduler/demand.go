package scheduler

import (
	"github.com/shopspring/decimal"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
)

// Policy holds the per-trade thresholds above which a job gets a second
// installer. A total equal to the threshold still gets one.
type Policy struct {
	TrimLinearFeet decimal.Decimal
	StairRisers    int
	DoorCount      int
}

func DefaultPolicy() Policy {
	return Policy{
		TrimLinearFeet: decimal.NewFromInt(400),
		StairRisers:    25,
		DoorCount:      15,
	}
}

// PolicyFromConfig falls back to the default for any threshold left at zero.
func PolicyFromConfig(cfg config.AssignmentConfig) Policy {
	p := DefaultPolicy()
	if cfg.TrimLinearFeetThreshold > 0 {
		p.TrimLinearFeet = decimal.NewFromFloat(cfg.TrimLinearFeetThreshold)
	}
	if cfg.StairRiserThreshold > 0 {
		p.StairRisers = cfg.StairRiserThreshold
	}
	if cfg.DoorCountThreshold > 0 {
		p.DoorCount = cfg.DoorCountThreshold
	}
	return p
}

type TradeDemand struct {
	Trade models.Trade `json:"trade"`
	// POIDs are the purchase orders with a positive quantity for the trade,
	// in the order they were read.
	POIDs            []int64 `json:"poIds"`
	InstallersNeeded int     `json:"installersNeeded"`
}

// PrimaryPOID is the purchase order every assignment of the trade is
// recorded against.
func (d TradeDemand) PrimaryPOID() int64 {
	if len(d.POIDs) == 0 {
		return 0
	}
	return d.POIDs[0]
}

type Demand struct {
	TrimLinearFeet decimal.Decimal `json:"trimLinearFeet"`
	StairRisers    int             `json:"stairRisers"`
	DoorCount      int             `json:"doorCount"`
	Trades         []TradeDemand   `json:"trades"`
}

func (d Demand) Empty() bool {
	return len(d.Trades) == 0
}

// Slots is the total number of installer positions the job needs.
func (d Demand) Slots() int {
	n := 0
	for _, t := range d.Trades {
		n += t.InstallersNeeded
	}
	return n
}

// AggregateDemand sums positive quantities per trade across a job's purchase
// orders and sizes each trade's crew. Trades come back in the order trim,
// stairs, doors; a trade with a zero total is left out.
func AggregateDemand(pos []models.PurchaseOrder, p Policy) Demand {
	d := Demand{TrimLinearFeet: decimal.Zero}
	poIDs := make(map[models.Trade][]int64, len(models.Trades))

	for _, po := range pos {
		if po.TrimLinearFeet != nil && po.TrimLinearFeet.IsPositive() {
			d.TrimLinearFeet = d.TrimLinearFeet.Add(*po.TrimLinearFeet)
			poIDs[models.TradeTrim] = append(poIDs[models.TradeTrim], po.ID)
		}
		if po.StairRisers != nil && *po.StairRisers > 0 {
			d.StairRisers += *po.StairRisers
			poIDs[models.TradeStairs] = append(poIDs[models.TradeStairs], po.ID)
		}
		if po.DoorCount != nil && *po.DoorCount > 0 {
			d.DoorCount += *po.DoorCount
			poIDs[models.TradeDoors] = append(poIDs[models.TradeDoors], po.ID)
		}
	}

	for _, trade := range models.Trades {
		ids := poIDs[trade]
		if len(ids) == 0 {
			continue
		}
		needed := 1
		switch trade {
		case models.TradeTrim:
			if d.TrimLinearFeet.GreaterThan(p.TrimLinearFeet) {
				needed = 2
			}
		case models.TradeStairs:
			if d.StairRisers > p.StairRisers {
				needed = 2
			}
		case models.TradeDoors:
			if d.DoorCount > p.DoorCount {
				needed = 2
			}
		}
		d.Trades = append(d.Trades, TradeDemand{Trade: trade, POIDs: ids, InstallersNeeded: needed})
	}
	return d
}
