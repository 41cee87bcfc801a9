// Package api defines the wire messages of the splitledger RPC services.
//
// Messages are plain structs encoded as JSON. Money is always an exact
// decimal string with two fractional digits on output (for example "25.00");
// inputs accept any decimal string.
//
// Request fields tagged with `validate` are checked by the server before the
// call reaches the ledger.
package api
