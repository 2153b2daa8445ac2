package scheduler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(v int) *int {
	return &v
}

func TestAggregateDemand_SumsPositiveQuantities(t *testing.T) {
	pos := []models.PurchaseOrder{
		{ID: 3, TrimLinearFeet: dec("120.5"), DoorCount: intp(4)},
		{ID: 5, TrimLinearFeet: dec("79.5"), StairRisers: intp(0)},
		{ID: 7, StairRisers: intp(12), DoorCount: intp(-2)},
		{ID: 9},
	}

	d := AggregateDemand(pos, DefaultPolicy())

	assert.True(t, decimal.NewFromInt(200).Equal(d.TrimLinearFeet), "trim total %s", d.TrimLinearFeet)
	assert.Equal(t, 12, d.StairRisers)
	assert.Equal(t, 4, d.DoorCount)

	require.Len(t, d.Trades, 3)
	assert.Equal(t, TradeDemand{Trade: models.TradeTrim, POIDs: []int64{3, 5}, InstallersNeeded: 1}, d.Trades[0])
	assert.Equal(t, TradeDemand{Trade: models.TradeStairs, POIDs: []int64{7}, InstallersNeeded: 1}, d.Trades[1])
	assert.Equal(t, TradeDemand{Trade: models.TradeDoors, POIDs: []int64{3}, InstallersNeeded: 1}, d.Trades[2])
	assert.Equal(t, int64(3), d.Trades[0].PrimaryPOID())
	assert.Equal(t, 3, d.Slots())
}

func TestAggregateDemand_Thresholds(t *testing.T) {
	cases := []struct {
		name string
		po   models.PurchaseOrder
		want int
	}{
		{"trim at threshold", models.PurchaseOrder{ID: 1, TrimLinearFeet: dec("400")}, 1},
		{"trim just over", models.PurchaseOrder{ID: 1, TrimLinearFeet: dec("400.01")}, 2},
		{"stairs at threshold", models.PurchaseOrder{ID: 1, StairRisers: intp(25)}, 1},
		{"stairs over", models.PurchaseOrder{ID: 1, StairRisers: intp(26)}, 2},
		{"doors at threshold", models.PurchaseOrder{ID: 1, DoorCount: intp(15)}, 1},
		{"doors over", models.PurchaseOrder{ID: 1, DoorCount: intp(16)}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := AggregateDemand([]models.PurchaseOrder{tc.po}, DefaultPolicy())
			require.Len(t, d.Trades, 1)
			assert.Equal(t, tc.want, d.Trades[0].InstallersNeeded)
		})
	}
}

func TestAggregateDemand_ThresholdAcrossOrders(t *testing.T) {
	d := AggregateDemand([]models.PurchaseOrder{
		{ID: 1, TrimLinearFeet: dec("200")},
		{ID: 2, TrimLinearFeet: dec("200.01")},
	}, DefaultPolicy())
	require.Len(t, d.Trades, 1)
	assert.Equal(t, 2, d.Trades[0].InstallersNeeded)
}

func TestAggregateDemand_NoDemand(t *testing.T) {
	assert.True(t, AggregateDemand(nil, DefaultPolicy()).Empty())

	d := AggregateDemand([]models.PurchaseOrder{
		{ID: 1, TrimLinearFeet: dec("0"), StairRisers: intp(0), DoorCount: intp(0)},
		{ID: 2},
	}, DefaultPolicy())
	assert.True(t, d.Empty())
	assert.Equal(t, 0, d.Slots())
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.AssignmentConfig{TrimLinearFeetThreshold: 250, DoorCountThreshold: 3})
	assert.True(t, decimal.NewFromInt(250).Equal(p.TrimLinearFeet))
	assert.Equal(t, 25, p.StairRisers)
	assert.Equal(t, 3, p.DoorCount)

	d := AggregateDemand([]models.PurchaseOrder{{ID: 1, TrimLinearFeet: dec("300")}}, p)
	assert.Equal(t, 2, d.Trades[0].InstallersNeeded)
}
