package market

import (
	"context"
	"errors"
	"testing"

	"github.com/kzon-tools/torn-market-analyzer/internal/testutil"
)

func TestFetchAll_OneOutcomePerItem(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()

	mock.QueueResponses(testutil.ItemMarketPath(206), testutil.MockResponse{
		Body: testutil.ItemMarketBody(206, "Xanax", 2, 830000),
	})
	mock.QueueResponses(testutil.ItemMarketPath(99), testutil.MockResponse{
		Body: testutil.ItemMarketBody(99, "Flowers", 1, 120),
	})
	mock.QueueResponses(testutil.ItemMarketPath(999), testutil.MockResponse{
		Body: testutil.ErrorBody(6, "Incorrect ID"),
	})

	c, _ := testClient(t, mock.URL())
	reqs := []Request{
		{ItemID: 206, Quantity: 8},
		{ItemID: 999, Quantity: 1},
		{ItemID: 99, Quantity: 3},
	}

	outcomes := c.FetchAll(context.Background(), reqs)

	if len(outcomes) != len(reqs) {
		t.Fatalf("Outcomes len = %d, want %d", len(outcomes), len(reqs))
	}

	// Outcomes arrive in request order and correlate by item id.
	for i, req := range reqs {
		if outcomes[i].ItemID != req.ItemID {
			t.Errorf("Outcomes[%d].ItemID = %d, want %d", i, outcomes[i].ItemID, req.ItemID)
		}
		if outcomes[i].MyQuantity != req.Quantity {
			t.Errorf("Outcomes[%d].MyQuantity = %d, want %d", i, outcomes[i].MyQuantity, req.Quantity)
		}
	}

	if !outcomes[0].OK() || outcomes[0].Row.ItemName != "Xanax" {
		t.Errorf("Outcomes[0] = %+v, want Xanax row", outcomes[0])
	}
	if outcomes[1].OK() {
		t.Error("Outcomes[1] should be an error row")
	}
	var apiErr *APIError
	if !errors.As(outcomes[1].Err, &apiErr) || apiErr.Code != 6 {
		t.Errorf("Outcomes[1].Err = %v, want APIError code 6", outcomes[1].Err)
	}
	if !outcomes[2].OK() || outcomes[2].Row.ItemName != "Flowers" {
		t.Errorf("Outcomes[2] = %+v, want Flowers row", outcomes[2])
	}
}

func TestFetchAll_Empty(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()

	c, _ := testClient(t, mock.URL())
	if out := c.FetchAll(context.Background(), nil); out != nil {
		t.Errorf("FetchAll(nil) = %v, want nil", out)
	}
}

func TestFetchAll_ParallelWorkersShareBucket(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()

	for id := 1; id <= 8; id++ {
		mock.QueueResponses(testutil.ItemMarketPath(id), testutil.MockResponse{
			Body: testutil.ItemMarketBody(id, "Item", 1, 100),
		})
	}

	c, bucket := testClient(t, mock.URL())
	before := bucket.Tokens()

	reqs := make([]Request, 0, 8)
	for id := 1; id <= 8; id++ {
		reqs = append(reqs, Request{ItemID: id, Quantity: 1})
	}

	outcomes := c.FetchAll(context.Background(), reqs)

	for i, o := range outcomes {
		if !o.OK() {
			t.Errorf("Outcomes[%d] failed: %v", i, o.Err)
		}
	}

	consumed := before - bucket.Tokens()
	if consumed < 7.5 || consumed > 8.5 {
		t.Errorf("Tokens consumed = %.2f, want ~8 (one per item)", consumed)
	}
}
