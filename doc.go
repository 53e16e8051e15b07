// Package folio reconstructs investment positions from a chronological
// trade journal and values them against live market data.
//
// The heart of the package is the lot accounting fold: each instrument's
// buys and sells, in date order, maintain one weighted-average cost basis
// in both the trade currency and the reporting currency, together with
// the open and closed holding intervals. Dividends are attributed to the
// currently open interval only. Everything downstream of the fold is
// composition: valuation with an FX/price P&L split, risk
// classification, ETF sector look-through, and the flat history files
// the reports read.
//
// The package stays free of I/O beyond the history files: importing the
// journal lives in siyuan, market data in yahoo, serving in bridge.
package folio
