// Package ir provides the domain types shared by every moacafe package.
//
// This package contains the menu, cart, order and event configuration records
// plus the canonical JSON encoding used to compare snapshots by value. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Money is an int64 in the smallest currency unit (IDR has no minor unit)
//   - JSON tags match the remote document store's field names
//   - Order line items are copies; editing the menu never touches a placed order
//   - Snapshot equality is decided on canonical JSON, never on Go struct identity
package ir
