// Package core defines the shared language of the pickaname system.
//
// This package contains:
//   - Domain entities (NameRecord, Name, Gender, ImportRun)
//   - Service interfaces (NameStore, ImportRunStore)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
