// Package remote is the gateway to the café's remote JSON document store.
//
// The store is an opaque key-path database: GET, PUT and PATCH on paths such
// as /menu.json or /orders/{id}.json. It offers no transactions and no push
// notifications.
//
// Every call resolves to one of three outcomes and never returns an error:
//
//   - OutcomeOK: 2xx with a non-null JSON body
//   - OutcomeEmpty: 2xx with a null body (nothing stored at the path)
//   - OutcomeUnavailable: non-2xx status, network failure, timeout, or a
//     body that is not valid JSON
//
// The gateway cannot tell a permission failure from a network failure. That
// classification belongs to the connectivity monitor in package engine.
package remote
