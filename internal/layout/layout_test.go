package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finstmt/internal/model"
)

func fields(keys ...string) []*model.CanonicalField {
	out := make([]*model.CanonicalField, len(keys))
	for i, k := range keys {
		out[i] = model.NewField(k, k, model.DataTypeMonetary, 100, 1)
	}
	return out
}

func keys(fs []*model.CanonicalField) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Key
	}
	return out
}

func TestAnnotate_Income(t *testing.T) {
	t.Parallel()

	fs := Annotate(model.StatementIncome, fields("net_income", "mystery_a", "revenue", "gross_profit", "mystery_b", "cost_of_revenue"))

	assert.Equal(t, []string{"revenue", "cost_of_revenue", "gross_profit", "net_income", "mystery_a", "mystery_b"}, keys(fs))

	rev := fs[0]
	assert.Equal(t, "Revenue", rev.Section)
	assert.Equal(t, 100, rev.DisplayOrder)
	assert.True(t, rev.IsSubtotal)

	cor := fs[1]
	assert.Equal(t, 1, cor.IndentLevel)
	assert.False(t, cor.IsSubtotal)

	other := fs[4]
	assert.Equal(t, OtherSection, other.Section)
	assert.Equal(t, OtherOrder, other.DisplayOrder)
	assert.Equal(t, 0, other.IndentLevel)
	assert.False(t, other.IsSubtotal)
}

func TestAnnotate_PerStatement(t *testing.T) {
	t.Parallel()

	bs := Annotate(model.StatementBalance, fields("total_assets", "cash_and_equivalents"))
	require.Len(t, bs, 2)
	assert.Equal(t, "cash_and_equivalents", bs[0].Key)
	assert.Equal(t, "Current Assets", bs[0].Section)

	cf := Annotate(model.StatementCashFlow, fields("net_income", "free_cash_flow"))
	assert.Equal(t, "Operating Activities", cf[0].Section)
	assert.Equal(t, "Summary", cf[1].Section)

	// net_income is placed by the statement it appears in.
	assert.Equal(t, "Net Income", Lookup(model.StatementIncome, "net_income").Section)
}

func TestLookup_Unmapped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Slot{Section: OtherSection, Order: OtherOrder}, Lookup(model.StatementCashFlow, "revenue"))
	assert.Equal(t, Slot{Section: OtherSection, Order: OtherOrder}, Lookup(model.StatementKind("equity"), "revenue"))
}

func TestAnnotate_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Annotate(model.StatementIncome, nil))
}
