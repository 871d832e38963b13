// Package hunt holds the long-lived event aggregate: the validated
// configuration pulled from the sheet plus the configured/started/ended
// lifecycle flags. Created once at process start and mutated only by config
// ingestion and the periodic start/end checks.
package hunt
