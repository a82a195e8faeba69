package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfdigest/internal/domain"
)

func validTrade() domain.Trade {
	return domain.Trade{
		OrderNumber:   "123456",
		TradeDate:     "2024-03-15",
		OperationType: domain.OperationBuy,
		MarketType:    "VISTA",
		Market:        domain.MarketEquities,
		Ticker:        "PETR4",
		Quantity:      100,
		Price:         38.50,
		TotalValue:    3850.00,
	}
}

func TestValidateRecordSet_Valid(t *testing.T) {
	e := NewEngine()
	rs := &domain.RecordSet{
		Trades: []domain.Trade{validTrade()},
		Fees:   []domain.Fee{{OrderNumber: "123456", TotalFees: 12.34}},
	}
	assert.NoError(t, e.ValidateRecordSet(rs))
}

func TestValidateRecordSet_OptionalFields(t *testing.T) {
	e := NewEngine()

	strike := 40.0
	expiry := "2024-06-21"
	trade := validTrade()
	trade.Market = domain.MarketDerivatives
	trade.StrikePrice = &strike
	trade.ExpirationDate = &expiry

	rs := &domain.RecordSet{Trades: []domain.Trade{trade}}
	assert.NoError(t, e.ValidateRecordSet(rs))

	bad := "21/06/2024"
	trade.ExpirationDate = &bad
	rs = &domain.RecordSet{Trades: []domain.Trade{trade}}

	err := e.ValidateRecordSet(rs)
	var sve *domain.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	require.Len(t, sve.Violations, 1)
	assert.Equal(t, "expirationDate", sve.Violations[0].Field)
}

func TestValidateRecordSet_CollectsAllViolations(t *testing.T) {
	e := NewEngine()

	bad := validTrade()
	bad.OperationType = "X"
	bad.Quantity = -5

	rs := &domain.RecordSet{
		Trades: []domain.Trade{bad, validTrade()},
		Fees:   []domain.Fee{{OrderNumber: "9", TotalFees: -1}},
	}

	err := e.ValidateRecordSet(rs)
	var sve *domain.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	require.Len(t, sve.Violations, 3)

	byField := map[string]domain.Violation{}
	for _, v := range sve.Violations {
		byField[v.Record+"."+v.Field] = v
	}

	op, ok := byField["trades[0].operationType"]
	require.True(t, ok, "missing operationType violation: %v", sve.Violations)
	assert.Equal(t, "oneof", op.Rule)

	qty, ok := byField["trades[0].quantity"]
	require.True(t, ok)
	assert.Equal(t, "gt", qty.Rule)

	fee, ok := byField["fees[0].totalFees"]
	require.True(t, ok)
	assert.Equal(t, "gte", fee.Rule)
}

func TestValidateRecordSet_EmptySetIsValid(t *testing.T) {
	e := NewEngine()
	assert.NoError(t, e.ValidateRecordSet(&domain.RecordSet{}))
}

func TestValidateRecordSet_MissingRequiredFields(t *testing.T) {
	e := NewEngine()
	rs := &domain.RecordSet{Trades: []domain.Trade{{}}}

	err := e.ValidateRecordSet(rs)
	var sve *domain.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.GreaterOrEqual(t, len(sve.Violations), 8)
	for _, v := range sve.Violations {
		assert.Equal(t, "trades[0]", v.Record)
	}
}
