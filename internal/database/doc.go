// Package database reads trade history recorded by a kalshi-data gatherer.
//
// Gatherers write every trade seen on the exchange feed to a TimescaleDB
// trades table (prices in hundred-thousandths, timestamps in microseconds).
// TradeStore serves analytics trade windows from that table so scans need
// no REST trade calls.
package database
