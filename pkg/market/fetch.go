package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchState is the explicit state of one FetchOne call. Mode fallback and
// retry cycles are driven off this enumeration rather than nested loop
// control flow, which keeps the retry budget auditable.
type fetchState int

const (
	// stateTryMode issues one network attempt under the current auth mode.
	stateTryMode fetchState = iota

	// stateBackoff sleeps, grows the backoff, and restarts the cycle at
	// the first auth mode.
	stateBackoff

	// Terminal states.
	stateSuccess
	stateFatal
	stateExhausted
)

// attemptResult is the classified result of a single network attempt.
type attemptResult struct {
	next   fetchState // stateTryMode means advance to the next auth mode
	row    *Row
	apiErr *APIError
	ctxErr error
}

// FetchOne resolves one item id to its market snapshot. It never returns an
// error: fetch failures are folded into the Outcome so one item's trouble
// cannot abort a batch. Each network attempt, including auth-mode
// fallbacks, debits one token from the shared bucket.
func (c *Client) FetchOne(ctx context.Context, itemID, myQuantity int) Outcome {
	logger := c.logger.With().Int("item_id", itemID).Logger()

	backoff := c.config.InitialBackoff
	cycle := 1
	mode := 0
	state := stateTryMode

	var row *Row
	var apiErr *APIError

	for {
		switch state {
		case stateTryMode:
			res := c.attempt(ctx, authModes[mode], mode == len(authModes)-1, itemID, myQuantity)
			if res.ctxErr != nil {
				return Outcome{ItemID: itemID, MyQuantity: myQuantity, Err: res.ctxErr}
			}
			row, apiErr = res.row, res.apiErr
			if res.next == stateTryMode {
				// Wrong auth convention; same cycle, next mode, no delay.
				logger.Debug().
					Stringer("auth_mode", authModes[mode]).
					Msg("Auth mode rejected, trying next")
				mode++
				continue
			}
			state = res.next

		case stateBackoff:
			if cycle >= c.config.RetryCycles {
				state = stateExhausted
				continue
			}
			marketRetriesTotal.Inc()
			marketBackoffSeconds.Observe(backoff.Seconds())
			logger.Warn().
				Int("cycle", cycle).
				Dur("backoff", backoff).
				Str("cause", apiErr.Error()).
				Msg("Transient market error, backing off")

			select {
			case <-ctx.Done():
				return Outcome{ItemID: itemID, MyQuantity: myQuantity, Err: fmt.Errorf("backoff wait: %w", ctx.Err())}
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * c.config.BackoffFactor)
			if c.config.MaxBackoff > 0 && backoff > c.config.MaxBackoff {
				backoff = c.config.MaxBackoff
			}
			cycle++
			mode = 0
			state = stateTryMode

		case stateSuccess:
			logger.Debug().
				Int("listings", row.ListingCount()).
				Msg("Market snapshot fetched")
			return Outcome{ItemID: itemID, MyQuantity: myQuantity, Row: row}

		case stateFatal:
			marketErrorsTotal.WithLabelValues(classFatal).Inc()
			logger.Error().
				Int("code", apiErr.Code).
				Str("message", apiErr.Message).
				Msg("Fatal market error")
			return Outcome{ItemID: itemID, MyQuantity: myQuantity, Err: apiErr}

		case stateExhausted:
			marketExhaustedTotal.Inc()
			logger.Error().
				Int("cycles", c.config.RetryCycles).
				Msg("Retry cycles exhausted")
			return Outcome{ItemID: itemID, MyQuantity: myQuantity, Err: ErrExhausted}
		}
	}
}

// attempt performs one rate-limited network attempt and classifies the
// response into the next state.
func (c *Client) attempt(ctx context.Context, mode AuthMode, lastMode bool, itemID, myQuantity int) attemptResult {
	if err := c.bucket.Take(ctx, 1); err != nil {
		return attemptResult{ctxErr: err}
	}

	start := time.Now()
	defer func() {
		marketRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.itemMarketURL(itemID), nil)
	if err != nil {
		// Only reachable with a malformed base URL; not retryable.
		return attemptResult{next: stateFatal, apiErr: &APIError{Code: codeNoStatus, Message: err.Error()}}
	}
	req.Header.Set("Accept", "application/json")
	c.applyAuth(req, mode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return attemptResult{ctxErr: ctx.Err()}
		}
		// Transport failure: no status at all, enters the transient path.
		marketErrorsTotal.WithLabelValues(classNetwork).Inc()
		marketRequestsTotal.WithLabelValues(mode.String(), "network_error").Inc()
		return attemptResult{next: stateBackoff, apiErr: &APIError{Code: codeNoStatus, Message: err.Error()}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		marketErrorsTotal.WithLabelValues(classNetwork).Inc()
		marketRequestsTotal.WithLabelValues(mode.String(), "network_error").Inc()
		return attemptResult{next: stateBackoff, apiErr: &APIError{Code: codeNoStatus, Message: err.Error()}}
	}

	var envelope apiEnvelope
	decodeErr := json.Unmarshal(body, &envelope)

	// An explicit upstream error payload outranks the HTTP status.
	if decodeErr == nil && envelope.Error != nil {
		return c.classifyAPIError(envelope.Error, mode, lastMode)
	}

	if retryableStatus(resp.StatusCode) {
		marketErrorsTotal.WithLabelValues(classTransient).Inc()
		marketRequestsTotal.WithLabelValues(mode.String(), fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return attemptResult{next: stateBackoff, apiErr: &APIError{
			Code:    codeNoStatus,
			Message: fmt.Sprintf("http status %d", resp.StatusCode),
		}}
	}

	if decodeErr != nil || resp.StatusCode >= 400 || envelope.ItemMarket == nil {
		marketRequestsTotal.WithLabelValues(mode.String(), "malformed").Inc()
		return attemptResult{next: stateFatal, apiErr: &APIError{
			Code:    codeNoStatus,
			Message: fmt.Sprintf("malformed response (status %d)", resp.StatusCode),
		}}
	}

	marketRequestsTotal.WithLabelValues(mode.String(), "ok").Inc()
	return attemptResult{next: stateSuccess, row: buildRow(envelope.ItemMarket, itemID, myQuantity)}
}

// classifyAPIError maps an upstream error payload onto the state machine.
func (c *Client) classifyAPIError(apiErr *APIError, mode AuthMode, lastMode bool) attemptResult {
	switch {
	case apiErr.Code == codeAuthMode && !lastMode:
		marketErrorsTotal.WithLabelValues(classAuthMode).Inc()
		marketRequestsTotal.WithLabelValues(mode.String(), "auth_rejected").Inc()
		return attemptResult{next: stateTryMode, apiErr: apiErr}
	case transientCode(apiErr.Code):
		marketErrorsTotal.WithLabelValues(classTransient).Inc()
		marketRequestsTotal.WithLabelValues(mode.String(), "transient").Inc()
		return attemptResult{next: stateBackoff, apiErr: apiErr}
	default:
		// Includes an auth-mode mismatch on the final mode: every
		// convention was rejected, so the key itself is the problem.
		marketRequestsTotal.WithLabelValues(mode.String(), "error").Inc()
		return attemptResult{next: stateFatal, apiErr: apiErr}
	}
}

// buildRow normalizes a payload into the fixed 100-slot wide format. At
// most the first MaxListings entries are taken in upstream order; the
// remaining slots stay nil.
func buildRow(payload *itemMarketPayload, itemID, myQuantity int) *Row {
	row := &Row{
		ItemID:       payload.Item.ID,
		ItemName:     payload.Item.Name,
		ItemType:     payload.Item.Type,
		AveragePrice: payload.Item.AveragePrice,
		MyQuantity:   myQuantity,
	}
	if row.ItemID == 0 {
		row.ItemID = itemID
	}

	listings := payload.Listings
	if len(listings) > MaxListings {
		listings = listings[:MaxListings]
	}
	for i, l := range listings {
		price, amount := l.Price, l.Amount
		row.Prices[i] = &price
		row.Amounts[i] = &amount
	}
	return row
}
