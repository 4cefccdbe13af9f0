// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// The study service coordinates deck and card management with the
// scheduling engine: recording a review advances the card's scheduling
// state, appends an immutable review log, and updates the day's statistics
// in a single transaction. Deletions cascade the same way, so review
// history and statistics never outlive their deck or card.
//
// Services receive dependencies through constructor injection and depend
// on domain entities and store interfaces, never on specific infrastructure
// implementations.
package service
