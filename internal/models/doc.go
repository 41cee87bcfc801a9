// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - User: someone who can belong to groups and pay expenses
//   - Group: a set of members sharing expenses
//   - Transaction: an expense paid by one member on behalf of the group
//   - Settlement: a payment a member makes to reduce what they owe
//
// Transactions and settlements are immutable once written. Balances are never
// stored; they are derived from the transactions and settlements of a group
// (see package calculator).
//
// # Money
//
// Every amount is a decimal.Decimal. Amounts are persisted and sent over the
// wire as exact decimal strings, never as binary floating point.
//
// Relationships use ID strings instead of pointers.
package models
