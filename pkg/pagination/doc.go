// Package pagination walks cursor-paginated list endpoints and splits id lists
// into batch-get sized chunks.
//
// The YouTube Data API returns an opaque nextPageToken on list endpoints and
// caps batch-get calls at 50 ids. Both loops here are sequential: a page is
// requested only after the previous one has been consumed.
//
// Example usage:
//
//	ids, err := pagination.FetchAll(ctx, func(ctx context.Context, cursor string) (pagination.Page[string], error) {
//		return api.PlaylistPage(ctx, playlistID, cursor, 50)
//	}, pagination.DefaultConfig())
//
//	details, err := pagination.BatchFetch(ctx, ids, 50, api.Videos)
//
// FetchAll:
//   - starts with an empty cursor
//   - appends items in response order, without dedup
//   - stops when the server returns no cursor
//   - aborts on the first error, or when the server repeats the cursor it was sent
package pagination
