// Package snapshot makes read models incremental. A QueryWrapper loads the last saved projection,
// queries only the events after its sequence number and folds them onto it.
//
// BIGSERIAL sequence numbers are handed out before commit, so a reader can see sequence N while
// an append that drew N-1 is still in flight. A snapshot saved at N would skip that event forever.
// The wrapper therefore only snapshots the settled prefix of what it read: the leading events that
// occurred longer than the settle window ago. Events after that prefix are still projected into the
// result, they are just replayed again on the next call.
//
//	wrapper, err := snapshot.NewQueryWrapper[stationlisting.Query, stationlisting.Stations](
//		eventStore,
//		"StationListing",
//		stationlisting.Project,
//		func(stationlisting.Query) eventstore.Filter { return stationlisting.BuildEventFilter() },
//		snapshot.WithLogger[stationlisting.Query, stationlisting.Stations](logger),
//	)
//
// A missing, unreadable or undecodable snapshot means a full replay; it never fails the query.
// Saving is best effort for the same reason.
package snapshot
