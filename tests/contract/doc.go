// Package contract replays task service responses through the client and the contract
// scenarios, and compares decoded results against golden files. No network access.
//
// The fixtures in testdata are synthetic: they follow the live service's envelopes and
// describe one task through create, get, update, list and delete, with made-up ids and
// timestamps. Replace them with real recordings with cmd/recordapi, then regenerate the
// goldens with RECORD=1.
//
// Run with: go test -tags=contract ./tests/contract/...
package contract
