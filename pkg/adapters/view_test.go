package adapters

import (
	"encoding/json"
	"testing"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDomainViewToApiView(t *testing.T) {
	t.Run("empty tables of the view are kept", func(t *testing.T) {
		v := MapDomainViewToApiView(domain.ViewResult{View: domain.ViewHourly})

		require.NotNil(t, v.Hourly)
		assert.Empty(t, v.Hourly)
		assert.Nil(t, v.TopBySales)

		body, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"view":"hourly","hourly":[]}`, string(body))
	})

	t.Run("tables of other views are dropped", func(t *testing.T) {
		v := MapDomainViewToApiView(domain.ViewResult{
			View:       domain.ViewProductRanking,
			TopBySales: []domain.ProductRank{{Item: "Bread", Sales: 4, Quantity: 2}},
			Hourly:     []domain.HourlyStat{{Hour: 9, Receipts: 1, Sales: 4, AvgSpend: 4}},
		})

		body, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"view": "product-ranking",
			"top_by_sales": [{"item": "Bread", "sales": 4, "quantity": 2}],
			"top_by_quantity": [],
			"categories": []
		}`, string(body))
	})

	t.Run("co-occurrence items are never null", func(t *testing.T) {
		v := MapDomainViewToApiView(domain.ViewResult{
			View:         domain.ViewCooccurrence,
			Cooccurrence: &domain.Cooccurrence{Target: "Caviar"},
		})

		body, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"view":"co-occurrence","cooccurrence":{"target":"Caviar","found":false,"items":[]}}`, string(body))
	})
}
