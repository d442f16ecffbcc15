// Package feed keeps a live tape of exchange trades.
//
// A Feed holds one WebSocket connection subscribed to the global trade
// channel:
//   - Handshakes are signed with the same RSA-PSS headers as REST calls
//   - Stale connections are detected from missing pings and redialed
//   - Reconnection uses exponential backoff up to a configured ceiling
//   - Parsed trades land on a Tape, which serves recent windows per market
//
// A Tape satisfies gateway.TradeSource, so analytics can read trades from
// memory instead of polling the REST trades endpoint.
package feed
