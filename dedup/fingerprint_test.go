package dedup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesperf/model"
)

func sampleTx() model.SalesTransaction {
	return model.SalesTransaction{
		TransactionDate: time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC),
		TicketNumber:    "T0001",
		StaffID:         "U123",
		ProductCode:     "P-9",
		Quantity:        1,
		TotalPrice:      decimal.RequireFromString("1000"),
		ProductName:     "iPhone",
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := sampleTx()
	b := sampleTx()
	b.ProductName = "different name"
	b.ServiceCategory = "その他"

	assert.Len(t, Fingerprint(a), 32)
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "fields outside the identity tuple are ignored")
}

func TestFingerprint_DecimalScaleIgnored(t *testing.T) {
	a := sampleTx()
	b := sampleTx()
	b.TotalPrice = decimal.RequireFromString("1000.00")

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_TupleFieldsMatter(t *testing.T) {
	base := Fingerprint(sampleTx())

	mutations := map[string]func(*model.SalesTransaction){
		"timestamp": func(tx *model.SalesTransaction) { tx.TransactionDate = tx.TransactionDate.Add(time.Second) },
		"ticket":    func(tx *model.SalesTransaction) { tx.TicketNumber = "T0002" },
		"staff":     func(tx *model.SalesTransaction) { tx.StaffID = "U124" },
		"product":   func(tx *model.SalesTransaction) { tx.ProductCode = "P-10" },
		"quantity":  func(tx *model.SalesTransaction) { tx.Quantity = 2 },
		"total":     func(tx *model.SalesTransaction) { tx.TotalPrice = decimal.NewFromInt(999) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			tx := sampleTx()
			mutate(&tx)
			assert.NotEqual(t, base, Fingerprint(tx))
		})
	}
}

func TestFilter_ExistingAndInBatchDuplicates(t *testing.T) {
	first := sampleTx()
	second := sampleTx()
	second.TicketNumber = "T0002"
	stored := sampleTx()
	stored.TicketNumber = "T0003"

	existing := NewSet([]string{Fingerprint(stored)})
	novel, dups := Filter(existing, []model.SalesTransaction{first, second, first, stored})

	require.Len(t, novel, 2)
	assert.Equal(t, 2, dups)
	assert.Equal(t, "T0001", novel[0].TicketNumber)
	assert.Equal(t, "T0002", novel[1].TicketNumber)
	assert.Equal(t, Fingerprint(first), novel[0].Fingerprint)
	assert.True(t, existing.Has(Fingerprint(second)))
}

func TestFilter_Empty(t *testing.T) {
	novel, dups := Filter(NewSet(nil), nil)
	assert.Empty(t, novel)
	assert.Zero(t, dups)
}
