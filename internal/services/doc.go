// Package services defines shared utilities consumed by the montage pipeline
// stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (retry with simpler parameters vs fatal for the run)
//     uniform across the pipeline.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays consistent across the assembler, selector, and synthesizer.
package services
