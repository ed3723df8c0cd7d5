// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingest and fixity work is strictly sequential: one file or object per
// store transaction, committed as soon as it completes.
package services
